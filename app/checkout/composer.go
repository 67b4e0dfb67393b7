package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sufrahub/sufra/cart"
	"github.com/sufrahub/sufra/models"
)

// ErrEmptyCart is returned when checkout is attempted with no line items.
var ErrEmptyCart = errors.New("cart is empty")

// ErrPriceMismatch is returned when the client-supplied subtotal diverges
// from the server-side recomputation beyond rounding tolerance.
var ErrPriceMismatch = errors.New("client subtotal does not match server subtotal")

// ValidationError marks user-fixable checkout problems (missing delivery
// fields, malformed lines) so the handler can answer 400 instead of 500.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// priceTolerance allows one minor currency unit of rounding drift between
// client and server arithmetic.
var priceTolerance = decimal.New(1, -2)

// OrderCreator is the persistence contract: the order and all its lines are
// written in a single transaction.
type OrderCreator interface {
	CreateOrder(order *models.Order) error
}

// DeliveryDetails are the contact fields captured on the checkout form.
type DeliveryDetails struct {
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Validate checks the required delivery fields.
func (d DeliveryDetails) Validate() error {
	if d.Phone == "" {
		return validationErrorf("phone is required")
	}
	if d.Street == "" {
		return validationErrorf("street is required")
	}
	if d.City == "" {
		return validationErrorf("city is required")
	}
	if d.Country == "" {
		return validationErrorf("country is required")
	}
	return nil
}

// Composer converts a finalized cart plus delivery details into a persisted
// order. The cart itself is untouched; clearing it after success is the
// caller's job.
type Composer struct {
	orders      OrderCreator
	deliveryFee decimal.Decimal
}

func NewComposer(orders OrderCreator, deliveryFee decimal.Decimal) *Composer {
	return &Composer{orders: orders, deliveryFee: deliveryFee}
}

// DeliveryFee returns the flat fee applied to every order.
func (c *Composer) DeliveryFee() decimal.Decimal {
	return c.deliveryFee
}

// PlaceOrder recomputes the subtotal from the line items, checks it against
// the advisory client subtotal when one is supplied, and persists the order
// as PENDING/unpaid with price and name snapshots on every line.
func (c *Composer) PlaceOrder(_ context.Context, userID uint, items []cart.LineItem, details DeliveryDetails, clientSubtotal *decimal.Decimal) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, validationErrorf("line %d has non-positive quantity", i)
		}
		subtotal = subtotal.Add(items[i].Total())
	}
	subtotal = subtotal.Round(2)

	if clientSubtotal != nil && subtotal.Sub(*clientSubtotal).Abs().GreaterThan(priceTolerance) {
		return nil, ErrPriceMismatch
	}

	order := &models.Order{
		Number:      newOrderNumber(),
		UserID:      userID,
		Phone:       details.Phone,
		Street:      details.Street,
		PostalCode:  details.PostalCode,
		City:        details.City,
		Country:     details.Country,
		Subtotal:    subtotal,
		DeliveryFee: c.deliveryFee,
		Total:       subtotal.Add(c.deliveryFee).Round(2),
		Paid:        false,
		Status:      models.StatusPending,
		Lines:       make([]models.OrderLine, len(items)),
	}

	for i := range items {
		order.Lines[i] = snapshotLine(&items[i])
	}

	if err := c.orders.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// snapshotLine freezes a cart line: unit price, product names and extra
// deltas are copied so later catalog edits never alter the historical order.
func snapshotLine(item *cart.LineItem) models.OrderLine {
	line := models.OrderLine{
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		ProductNameAr: item.ProductNameAr,
		UnitPrice:     item.UnitPrice().Round(2),
		Quantity:      item.Quantity,
	}
	if item.Size != nil {
		id := item.Size.ID
		line.SizeID = &id
		line.SizeName = item.Size.Name
	}
	for _, e := range item.Extras {
		line.Extras = append(line.Extras, models.ExtraSnapshot{
			ID:         e.ID,
			Name:       e.Name,
			NameAr:     e.NameAr,
			PriceDelta: e.PriceDelta,
		})
	}
	return line
}

func newOrderNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + raw[:12]
}

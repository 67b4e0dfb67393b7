// Package cart implements the in-memory cart: line items keyed by variant
// identity (product + size + extra set), with quantity and subtotal
// aggregates. It owns no storage; persistence wraps the JSON form.
package cart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ChosenSize is the size picked for a line item, frozen with its price delta.
type ChosenSize struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// ChosenExtra is one selected add-on, frozen with its price delta.
type ChosenExtra struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	NameAr     string          `json:"name_ar,omitempty"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// LineItem is "this product, configured this way, N times". Extras are held
// sorted by id ascending; normalize enforces that on every entry path so
// variant comparison never has to re-sort.
type LineItem struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductNameAr string          `json:"product_name_ar,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	BasePrice     decimal.Decimal `json:"base_price"`
	Size          *ChosenSize     `json:"size,omitempty"`
	Extras        []ChosenExtra   `json:"extras,omitempty"`
	Quantity      int             `json:"quantity"`
}

// UnitPrice is base price plus the size delta plus all extra deltas.
func (l *LineItem) UnitPrice() decimal.Decimal {
	price := l.BasePrice
	if l.Size != nil {
		price = price.Add(l.Size.PriceDelta)
	}
	for _, e := range l.Extras {
		price = price.Add(e.PriceDelta)
	}
	return price
}

// Total is the unit price times quantity.
func (l *LineItem) Total() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// normalize sorts extras by id and drops duplicate ids so the stored extras
// slice is the canonical representation of the set.
func (l *LineItem) normalize() {
	sort.Slice(l.Extras, func(i, j int) bool { return l.Extras[i].ID < l.Extras[j].ID })
	deduped := l.Extras[:0]
	var prev uint
	for i, e := range l.Extras {
		if i > 0 && e.ID == prev {
			continue
		}
		deduped = append(deduped, e)
		prev = e.ID
	}
	l.Extras = deduped
}

// key returns the canonical variant identity. "no size" is its own state,
// distinct from every size id.
func (l *LineItem) key() string {
	return VariantKey(l.ProductID, sizeID(l.Size), extraIDs(l.Extras))
}

func sizeID(s *ChosenSize) *uint {
	if s == nil {
		return nil
	}
	return &s.ID
}

func extraIDs(extras []ChosenExtra) []uint {
	ids := make([]uint, len(extras))
	for i, e := range extras {
		ids[i] = e.ID
	}
	return ids
}

// VariantKey builds the composite identity string for a (product, size,
// extra-id set) configuration. Extra ids are compared as sorted sequences,
// so insertion order never matters.
func VariantKey(productID uint, sizeID *uint, extras []uint) string {
	sorted := make([]uint, len(extras))
	copy(sorted, extras)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "p:%d|s:", productID)
	if sizeID == nil {
		b.WriteString("-")
	} else {
		fmt.Fprintf(&b, "%d", *sizeID)
	}
	b.WriteString("|e:")
	var prev uint
	for i, id := range sorted {
		if i > 0 && id == prev {
			continue
		}
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", id)
		prev = id
	}
	return b.String()
}

// Cart is an ordered list of line items, at most one per variant.
type Cart struct {
	items []LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Items returns the line items in insertion order.
func (c *Cart) Items() []LineItem {
	return c.items
}

func (c *Cart) find(key string) int {
	for i := range c.items {
		if c.items[i].key() == key {
			return i
		}
	}
	return -1
}

// AddOrIncrement adds one unit of the given configuration. A matching
// variant gains quantity; otherwise the item is appended with quantity 1.
// The item's own Quantity field is ignored.
func (c *Cart) AddOrIncrement(item LineItem) {
	item.normalize()
	if i := c.find(item.key()); i >= 0 {
		c.items[i].Quantity++
		return
	}
	item.Quantity = 1
	c.items = append(c.items, item)
}

// Decrement removes one unit of the matching variant, dropping the line
// entirely at quantity one. Decrementing an absent variant is a no-op.
func (c *Cart) Decrement(productID uint, sizeID *uint, extras []uint) {
	i := c.find(VariantKey(productID, sizeID, extras))
	if i < 0 {
		return
	}
	if c.items[i].Quantity > 1 {
		c.items[i].Quantity--
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// RemoveVariant drops the matching line item regardless of quantity.
func (c *Cart) RemoveVariant(productID uint, sizeID *uint, extras []uint) {
	if i := c.find(VariantKey(productID, sizeID, extras)); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Clear empties the cart. Callers invoke this only after a confirmed
// successful checkout.
func (c *Cart) Clear() {
	c.items = nil
}

// QuantityOf returns the stored quantity for a variant, zero when absent.
func (c *Cart) QuantityOf(productID uint, sizeID *uint, extras []uint) int {
	if i := c.find(VariantKey(productID, sizeID, extras)); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// TotalQuantity sums all line quantities (the cart badge number).
func (c *Cart) TotalQuantity() int {
	total := 0
	for i := range c.items {
		total += c.items[i].Quantity
	}
	return total
}

// Subtotal sums line totals with exact decimal arithmetic.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for i := range c.items {
		subtotal = subtotal.Add(c.items[i].Total())
	}
	return subtotal
}

// MarshalJSON serializes the cart as the ordered list of its line items.
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// UnmarshalJSON rehydrates a cart from its serialized form, re-normalizing
// each item and dropping lines with non-positive quantities.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.items = nil
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		item.normalize()
		c.items = append(c.items, item)
	}
	return nil
}

package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sufrahub/sufra/app/httpx"
	"github.com/sufrahub/sufra/internal/session"
	"github.com/sufrahub/sufra/models"
)

type OrderProvider interface {
	GetByNumber(number string) (*models.Order, error)
	GetByUser(userID uint) ([]models.Order, error)
	GetFilteredOrders(offset, limit int, filters models.OrderFilters) ([]models.Order, int64, error)
	UpdateStatus(number string, to models.OrderStatus) (*models.Order, error)
	MarkPaid(number string, paid bool) (*models.Order, error)
}

type OrdersHandler struct {
	repo OrderProvider
}

func NewOrdersHandler(r OrderProvider) *OrdersHandler {
	return &OrdersHandler{repo: r}
}

type LineResponse struct {
	ProductID   uint     `json:"product_id"`
	ProductName string   `json:"product_name"`
	SizeName    string   `json:"size_name,omitempty"`
	ExtraNames  []string `json:"extra_names,omitempty"`
	UnitPrice   float64  `json:"unit_price"`
	Quantity    int      `json:"quantity"`
	LineTotal   float64  `json:"line_total"`
}

type OrderResponse struct {
	Number      string         `json:"number"`
	Status      string         `json:"status"`
	Paid        bool           `json:"paid"`
	Phone       string         `json:"phone"`
	Street      string         `json:"street"`
	PostalCode  string         `json:"postal_code,omitempty"`
	City        string         `json:"city"`
	Country     string         `json:"country"`
	Subtotal    float64        `json:"subtotal"`
	DeliveryFee float64        `json:"delivery_fee"`
	Total       float64        `json:"total"`
	CreatedAt   time.Time      `json:"created_at"`
	Lines       []LineResponse `json:"lines"`
}

// toResponse renders an order from its snapshots alone; nothing here joins
// back to live catalog rows, so historical orders display unchanged after
// admin price edits.
func toResponse(o *models.Order, lang string) OrderResponse {
	resp := OrderResponse{
		Number:      o.Number,
		Status:      string(o.Status),
		Paid:        o.Paid,
		Phone:       o.Phone,
		Street:      o.Street,
		PostalCode:  o.PostalCode,
		City:        o.City,
		Country:     o.Country,
		Subtotal:    o.Subtotal.InexactFloat64(),
		DeliveryFee: o.DeliveryFee.InexactFloat64(),
		Total:       o.Total.InexactFloat64(),
		CreatedAt:   o.CreatedAt,
		Lines:       make([]LineResponse, len(o.Lines)),
	}
	for i, l := range o.Lines {
		name := l.ProductName
		if lang == "ar" && l.ProductNameAr != "" {
			name = l.ProductNameAr
		}
		line := LineResponse{
			ProductID:   l.ProductID,
			ProductName: name,
			SizeName:    l.SizeName,
			UnitPrice:   l.UnitPrice.InexactFloat64(),
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal().InexactFloat64(),
		}
		for _, e := range l.Extras {
			extraName := e.Name
			if lang == "ar" && e.NameAr != "" {
				extraName = e.NameAr
			}
			line.ExtraNames = append(line.ExtraNames, extraName)
		}
		resp.Lines[i] = line
	}
	return resp
}

func langFrom(r *http.Request) string {
	if r.URL.Query().Get("lang") == "ar" {
		return "ar"
	}
	return "en"
}

// HandleGetMine lists the authenticated user's orders, newest first.
func (h *OrdersHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.repo.GetByUser(sess.UserID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	lang := langFrom(r)
	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = toResponse(&orders[i], lang)
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleGetOne returns one order. Customers only see their own; admins see any.
func (h *OrdersHandler) HandleGetOne(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	order, err := h.repo.GetByNumber(r.PathValue("number"))
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Order not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve order")
		return
	}

	if order.UserID != sess.UserID && sess.Role != models.RoleAdmin {
		httpx.WriteError(w, http.StatusNotFound, "Order not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(order, langFrom(r)))
}

func (h *OrdersHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	offset := 0
	limit := 20
	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil && l >= 1 && l <= 100 {
			limit = l
		}
	}

	filters := models.OrderFilters{}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.OrderStatus(statusStr)
		if !models.ValidOrderStatus(status) {
			httpx.WriteError(w, http.StatusBadRequest, "Unknown order status")
			return
		}
		filters.Status = status
	}
	if userStr := r.URL.Query().Get("user_id"); userStr != "" {
		if id, err := strconv.ParseUint(userStr, 10, 32); err == nil {
			filters.UserID = uint(id)
		}
	}

	orders, total, err := h.repo.GetFilteredOrders(offset, limit, filters)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	lang := langFrom(r)
	response := struct {
		Total  int             `json:"total"`
		Orders []OrderResponse `json:"orders"`
	}{
		Total:  int(total),
		Orders: make([]OrderResponse, len(orders)),
	}
	for i := range orders {
		response.Orders[i] = toResponse(&orders[i], lang)
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

func (h *OrdersHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	to := models.OrderStatus(input.Status)
	if !models.ValidOrderStatus(to) {
		httpx.WriteError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	order, err := h.repo.UpdateStatus(r.PathValue("number"), to)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, models.ErrInvalidTransition):
			httpx.WriteError(w, http.StatusConflict, "Status transition not allowed")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(order, langFrom(r)))
}

func (h *OrdersHandler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Paid bool `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	order, err := h.repo.MarkPaid(r.PathValue("number"), input.Paid)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Order not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(order, langFrom(r)))
}

// Register mounts the customer-facing order routes (behind RequireUser).
func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.HandleGetMine)
	r.Get("/orders/{number}", h.HandleGetOne)
}

// RegisterAdmin mounts back-office order routes.
func (h *OrdersHandler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.HandleGetAll)
	r.Patch("/orders/{number}/status", h.HandleUpdateStatus)
	r.Patch("/orders/{number}/paid", h.HandleMarkPaid)
}

package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sufrahub/sufra/app/httpx"
	"github.com/sufrahub/sufra/internal/cartstore"
	"github.com/sufrahub/sufra/internal/platform/metrics"
	"github.com/sufrahub/sufra/internal/session"
)

type CheckoutHandler struct {
	composer *Composer
	carts    cartstore.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewCheckoutHandler(composer *Composer, carts cartstore.Store, logger *slog.Logger, m *metrics.Metrics) *CheckoutHandler {
	return &CheckoutHandler{composer: composer, carts: carts, logger: logger, metrics: m}
}

type checkoutRequest struct {
	Delivery DeliveryDetails `json:"delivery"`
	// Subtotal is the client's displayed subtotal, advisory only; the
	// server recomputes and rejects on divergence.
	Subtotal *string `json:"subtotal,omitempty"`
}

type checkoutResponse struct {
	Number      string  `json:"number"`
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
	Status      string  `json:"status"`
}

// HandleCheckout places the order from the session's cart. The cart is
// cleared only after the order is confirmed persisted; any failure leaves
// it intact so the user can retry.
func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var clientSubtotal *decimal.Decimal
	if req.Subtotal != nil {
		parsed, err := decimal.NewFromString(*req.Subtotal)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "subtotal must be a decimal")
			return
		}
		clientSubtotal = &parsed
	}

	c, err := h.carts.Load(r.Context(), sess.Token)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	order, err := h.composer.PlaceOrder(r.Context(), sess.UserID, c.Items(), req.Delivery, clientSubtotal)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.metrics.OrdersRejected.WithLabelValues("empty_cart").Inc()
			httpx.WriteError(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, ErrPriceMismatch):
			h.metrics.OrdersRejected.WithLabelValues("price_mismatch").Inc()
			httpx.WriteError(w, http.StatusBadRequest, "Cart prices changed, please review your cart")
		default:
			var vErr ValidationError
			if errors.As(err, &vErr) {
				h.metrics.OrdersRejected.WithLabelValues("validation").Inc()
				httpx.WriteError(w, http.StatusBadRequest, vErr.Error())
				return
			}
			h.metrics.OrdersRejected.WithLabelValues("persistence").Inc()
			h.logger.Error("order placement failed", "user_id", sess.UserID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}

	// Clear only on confirmed success. A failed clear is logged, not
	// surfaced: the order exists and the stale cart is recoverable.
	c.Clear()
	if err := h.carts.Save(r.Context(), sess.Token, c); err != nil {
		h.logger.Error("failed to clear cart after checkout", "order", order.Number, "err", err)
	}

	h.metrics.OrdersPlaced.Inc()
	h.logger.Info("order placed", "order", order.Number, "user_id", sess.UserID, "total", order.Total.String())

	httpx.WriteJSON(w, http.StatusCreated, checkoutResponse{
		Number:      order.Number,
		Subtotal:    order.Subtotal.InexactFloat64(),
		DeliveryFee: order.DeliveryFee.InexactFloat64(),
		Total:       order.Total.InexactFloat64(),
		Status:      string(order.Status),
	})
}

// Register mounts the checkout route; the router wraps it in RequireUser.
func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.HandleCheckout)
}

package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sufrahub/sufra/app/httpx"
	enginecart "github.com/sufrahub/sufra/cart"
	"github.com/sufrahub/sufra/internal/cartstore"
	"github.com/sufrahub/sufra/internal/session"
	"github.com/sufrahub/sufra/models"
)

// ProductProvider supplies the catalog data a cart mutation needs to price
// and validate the chosen configuration.
type ProductProvider interface {
	GetByID(id uint) (*models.Product, error)
}

type CartHandler struct {
	products ProductProvider
	carts    cartstore.Store
}

func NewCartHandler(products ProductProvider, carts cartstore.Store) *CartHandler {
	return &CartHandler{products: products, carts: carts}
}

// variantRequest identifies one (product, size, extras) configuration.
type variantRequest struct {
	ProductID uint   `json:"product_id"`
	SizeID    *uint  `json:"size_id,omitempty"`
	ExtraIDs  []uint `json:"extra_ids,omitempty"`
}

type lineItemResponse struct {
	ProductID   uint     `json:"product_id"`
	ProductName string   `json:"product_name"`
	ImageURL    string   `json:"image_url,omitempty"`
	SizeID      *uint    `json:"size_id,omitempty"`
	SizeName    string   `json:"size_name,omitempty"`
	ExtraIDs    []uint   `json:"extra_ids,omitempty"`
	ExtraNames  []string `json:"extra_names,omitempty"`
	UnitPrice   float64  `json:"unit_price"`
	Quantity    int      `json:"quantity"`
	LineTotal   float64  `json:"line_total"`
}

type cartResponse struct {
	Items         []lineItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	Subtotal      float64            `json:"subtotal"`
}

func toCartResponse(c *enginecart.Cart, lang string) cartResponse {
	items := c.Items()
	resp := cartResponse{
		Items:         make([]lineItemResponse, len(items)),
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      c.Subtotal().Round(2).InexactFloat64(),
	}
	for i := range items {
		item := &items[i]
		line := lineItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			UnitPrice:   item.UnitPrice().Round(2).InexactFloat64(),
			Quantity:    item.Quantity,
			LineTotal:   item.Total().Round(2).InexactFloat64(),
		}
		if lang == "ar" && item.ProductNameAr != "" {
			line.ProductName = item.ProductNameAr
		}
		if item.Size != nil {
			id := item.Size.ID
			line.SizeID = &id
			line.SizeName = item.Size.Name
		}
		for _, e := range item.Extras {
			line.ExtraIDs = append(line.ExtraIDs, e.ID)
			name := e.Name
			if lang == "ar" && e.NameAr != "" {
				name = e.NameAr
			}
			line.ExtraNames = append(line.ExtraNames, name)
		}
		resp.Items[i] = line
	}
	return resp
}

func langFrom(r *http.Request) string {
	if r.URL.Query().Get("lang") == "ar" {
		return "ar"
	}
	return "en"
}

func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (*enginecart.Cart, string, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, "", false
	}
	c, err := h.carts.Load(r.Context(), sess.Token)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load cart")
		return nil, "", false
	}
	return c, sess.Token, true
}

func (h *CartHandler) saveAndRespond(w http.ResponseWriter, r *http.Request, token string, c *enginecart.Cart) {
	if err := h.carts.Save(r.Context(), token, c); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCartResponse(c, langFrom(r)))
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCartResponse(c, langFrom(r)))
}

func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.products.GetByID(req.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	item, err := enginecart.ItemFromProduct(product, req.SizeID, req.ExtraIDs)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, token, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	c.AddOrIncrement(item)
	h.saveAndRespond(w, r, token, c)
}

func (h *CartHandler) HandleDecrement(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	c, token, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	c.Decrement(req.ProductID, req.SizeID, req.ExtraIDs)
	h.saveAndRespond(w, r, token, c)
}

func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	c, token, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	c.RemoveVariant(req.ProductID, req.SizeID, req.ExtraIDs)
	h.saveAndRespond(w, r, token, c)
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	c, token, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	c.Clear()
	h.saveAndRespond(w, r, token, c)
}

// Register mounts cart routes; the router wraps them in RequireUser.
func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.HandleGet)
	r.Post("/cart/items", h.HandleAdd)
	r.Post("/cart/items/decrement", h.HandleDecrement)
	r.Post("/cart/items/remove", h.HandleRemove)
	r.Delete("/cart", h.HandleClear)
}

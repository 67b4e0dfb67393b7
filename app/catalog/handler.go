package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sufrahub/sufra/app/httpx"
	"github.com/sufrahub/sufra/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Product struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	BasePrice   float64  `json:"base_price"`
	ImageURL    string   `json:"image_url,omitempty"`
	OnOffer     bool     `json:"on_offer"`
	Category    Category `json:"category"`
}

type Size struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

type Extra struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

type ProductDetail struct {
	Product
	Sizes  []Size  `json:"sizes"`
	Extras []Extra `json:"extras"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByCode(code string) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uint) error
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

// langFrom picks the display language; anything but "ar" falls back to English.
func langFrom(r *http.Request) string {
	if r.URL.Query().Get("lang") == "ar" {
		return "ar"
	}
	return "en"
}

func localized(lang, en, ar string) string {
	if lang == "ar" && ar != "" {
		return ar
	}
	return en
}

func toProduct(p *models.Product, lang string) Product {
	return Product{
		Code:        p.Code,
		Name:        localized(lang, p.Name, p.NameAr),
		Description: localized(lang, p.Description, p.DescriptionAr),
		BasePrice:   p.BasePrice.InexactFloat64(),
		ImageURL:    p.ImageURL,
		OnOffer:     p.OnOffer,
		Category: Category{
			Code: p.Category.Code,
			Name: localized(lang, p.Category.Name, p.Category.NameAr),
		},
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	filters := models.ProductFilters{
		CategoryCode: r.URL.Query().Get("category"),
	}
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			filters.PriceLessThan = &val
		}
	}
	if offerStr := r.URL.Query().Get("offer"); offerStr != "" {
		if val, err := strconv.ParseBool(offerStr); err == nil {
			filters.OnOffer = &val
		}
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	lang := langFrom(r)
	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i], lang)
	}

	httpx.WriteJSON(w, http.StatusOK, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	product, err := h.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	lang := langFrom(r)
	detail := ProductDetail{
		Product: toProduct(product, lang),
		Sizes:   make([]Size, len(product.Sizes)),
		Extras:  make([]Extra, len(product.Extras)),
	}
	for i, s := range product.Sizes {
		detail.Sizes[i] = Size{
			ID:         s.ID,
			Name:       string(s.Name),
			PriceDelta: s.PriceDelta.InexactFloat64(),
		}
	}
	for i, e := range product.Extras {
		detail.Extras[i] = Extra{
			ID:         e.ID,
			Name:       localized(lang, e.Name, e.NameAr),
			PriceDelta: e.PriceDelta.InexactFloat64(),
		}
	}

	httpx.WriteJSON(w, http.StatusOK, detail)
}

// ProductInput is the admin payload for creating or replacing a product.
type ProductInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	NameAr        string `json:"name_ar"`
	Description   string `json:"description"`
	DescriptionAr string `json:"description_ar"`
	BasePrice     string `json:"base_price"`
	ImageURL      string `json:"image_url"`
	OnOffer       bool   `json:"on_offer"`
	CategoryID    uint   `json:"category_id"`
	Sizes         []struct {
		Name       string `json:"name"`
		PriceDelta string `json:"price_delta"`
	} `json:"sizes"`
	Extras []struct {
		Name       string `json:"name"`
		NameAr     string `json:"name_ar"`
		PriceDelta string `json:"price_delta"`
	} `json:"extras"`
}

func (in *ProductInput) toModel() (*models.Product, error) {
	if in.Code == "" || in.Name == "" || in.CategoryID == 0 {
		return nil, errors.New("code, name and category_id are required")
	}
	basePrice, err := decimal.NewFromString(in.BasePrice)
	if err != nil || basePrice.IsNegative() {
		return nil, errors.New("base_price must be a non-negative decimal")
	}

	product := &models.Product{
		Code:          in.Code,
		Name:          in.Name,
		NameAr:        in.NameAr,
		Description:   in.Description,
		DescriptionAr: in.DescriptionAr,
		BasePrice:     basePrice,
		ImageURL:      in.ImageURL,
		OnOffer:       in.OnOffer,
		CategoryID:    in.CategoryID,
	}
	for _, s := range in.Sizes {
		delta, err := decimal.NewFromString(s.PriceDelta)
		if err != nil {
			return nil, errors.New("size price_delta must be a decimal")
		}
		product.Sizes = append(product.Sizes, models.Size{
			Name:       models.SizeName(s.Name),
			PriceDelta: delta,
		})
	}
	for _, e := range in.Extras {
		delta, err := decimal.NewFromString(e.PriceDelta)
		if err != nil {
			return nil, errors.New("extra price_delta must be a decimal")
		}
		product.Extras = append(product.Extras, models.Extra{
			Name:       e.Name,
			NameAr:     e.NameAr,
			PriceDelta: delta,
		})
	}
	return product, nil
}

func (h *CatalogHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := input.toModel()
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.CreateProduct(product); err != nil {
		if errors.Is(err, models.ErrDuplicateProductCode) {
			httpx.WriteError(w, http.StatusConflict, "Product code already exists")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"code": product.Code})
}

func (h *CatalogHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	existing, err := h.repo.GetByCode(r.PathValue("code"))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := input.toModel()
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	product.ID = existing.ID

	if err := h.repo.UpdateProduct(product); err != nil {
		if errors.Is(err, models.ErrDuplicateProductCode) {
			httpx.WriteError(w, http.StatusConflict, "Product code already exists")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"code": product.Code})
}

func (h *CatalogHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	existing, err := h.repo.GetByCode(r.PathValue("code"))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	if err := h.repo.DeleteProduct(existing.ID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Register mounts catalog routes; admin mutations are mounted separately
// behind the admin guard.
func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/catalog", h.HandleGet)
	r.Get("/catalog/{code}", h.HandleGetProduct)
}

// RegisterAdmin mounts the product mutation routes.
func (h *CatalogHandler) RegisterAdmin(r chi.Router) {
	r.Post("/products", h.HandleCreateProduct)
	r.Put("/products/{code}", h.HandleUpdateProduct)
	r.Delete("/products/{code}", h.HandleDeleteProduct)
}

package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sufrahub/sufra/app/httpx"
	"github.com/sufrahub/sufra/models"
)

type CategoryResponse struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	NameAr string `json:"name_ar"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	CreateCategory(category *models.Category) error
	UpdateCategory(category *models.Category) error
	DeleteCategory(id uint) error
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:     c.ID,
			Code:   c.Code,
			Name:   c.Name,
			NameAr: c.NameAr,
		}
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

type categoryInput struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	NameAr string `json:"name_ar"`
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if input.Code == "" || input.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing code or name")
		return
	}

	category := &models.Category{
		Code:   input.Code,
		Name:   input.Name,
		NameAr: input.NameAr,
	}

	if err := h.repo.CreateCategory(category); err != nil {
		if errors.Is(err, models.ErrDuplicateCategoryCode) {
			httpx.WriteError(w, http.StatusConflict, "Category code already exists")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Category created successfully",
	})
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var input categoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Code == "" || input.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing code or name")
		return
	}

	category := &models.Category{
		ID:     uint(id),
		Code:   input.Code,
		Name:   input.Name,
		NameAr: input.NameAr,
	}

	if err := h.repo.UpdateCategory(category); err != nil {
		switch {
		case errors.Is(err, models.ErrCategoryNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, models.ErrDuplicateCategoryCode):
			httpx.WriteError(w, http.StatusConflict, "Category code already exists")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Category updated successfully",
	})
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.repo.DeleteCategory(uint(id)); err != nil {
		switch {
		case errors.Is(err, models.ErrCategoryNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, models.ErrCategoryInUse):
			httpx.WriteError(w, http.StatusConflict, "Category still has products")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to delete category")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the public category listing.
func (h *CategoryHandler) Register(r chi.Router) {
	r.Get("/categories", h.HandleGetAll)
}

// RegisterAdmin mounts category mutations.
func (h *CategoryHandler) RegisterAdmin(r chi.Router) {
	r.Post("/categories", h.HandleCreate)
	r.Put("/categories/{id}", h.HandleUpdate)
	r.Delete("/categories/{id}", h.HandleDelete)
}

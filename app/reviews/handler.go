package reviews

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

type ReviewProvider interface {
	CreateReview(review *models.Review) error
	GetApprovedReviews(offset, limit int) ([]models.Review, int64, error)
	GetAllReviews(offset, limit int) ([]models.Review, int64, error)
	SetApproved(id uint, approved bool) error
	DeleteReview(id uint) error
}

type ReviewsHandler struct {
	repo ReviewProvider
}

func NewReviewsHandler(r ReviewProvider) *ReviewsHandler {
	return &ReviewsHandler{repo: r}
}

type ReviewResponse struct {
	ID        uint      `json:"id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponses(reviews []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, rev := range reviews {
		out[i] = ReviewResponse{
			ID:        rev.ID,
			UserName:  rev.User.Name,
			Rating:    rev.Rating,
			Comment:   rev.Comment,
			Approved:  rev.Approved,
			CreatedAt: rev.CreatedAt,
		}
	}
	return out
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	offset := 0
	limit := defaultLimit
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
	return offset, limit
}

func (h *ReviewsHandler) HandleGetApproved(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 20)
	reviews, total, err := h.repo.GetApprovedReviews(offset, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Total   int              `json:"total"`
		Reviews []ReviewResponse `json:"reviews"`
	}{int(total), toResponses(reviews)})
}

func (h *ReviewsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		httpx.WriteError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	review := &models.Review{
		UserID:  sess.UserID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	if err := h.repo.CreateReview(review); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": review.ID})
}

func (h *ReviewsHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 20)
	reviews, total, err := h.repo.GetAllReviews(offset, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Total   int              `json:"total"`
		Reviews []ReviewResponse `json:"reviews"`
	}{int(total), toResponses(reviews)})
}

func (h *ReviewsHandler) HandleSetApproved(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	var input struct {
		Approved bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.repo.SetApproved(uint(id), input.Approved); err != nil {
		if errors.Is(err, models.ErrReviewNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Review not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.repo.DeleteReview(uint(id)); err != nil {
		if errors.Is(err, models.ErrReviewNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Review not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the public listing; creation goes behind RequireUser.
func (h *ReviewsHandler) Register(r chi.Router) {
	r.Get("/reviews", h.HandleGetApproved)
}

// RegisterAuthed mounts review creation for signed-in users.
func (h *ReviewsHandler) RegisterAuthed(r chi.Router) {
	r.Post("/reviews", h.HandleCreate)
}

// RegisterAdmin mounts moderation routes.
func (h *ReviewsHandler) RegisterAdmin(r chi.Router) {
	r.Get("/reviews", h.HandleGetAll)
	r.Patch("/reviews/{id}/approved", h.HandleSetApproved)
	r.Delete("/reviews/{id}", h.HandleDelete)
}

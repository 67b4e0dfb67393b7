// Package admin holds back-office handlers that do not belong to a catalog
// feature: user administration and image uploads.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sufrahub/sufra/app/httpx"
	"github.com/sufrahub/sufra/internal/platform/images"
	"github.com/sufrahub/sufra/internal/session"
	"github.com/sufrahub/sufra/models"
)

type UserProvider interface {
	GetAllUsers(offset, limit int) ([]models.User, int64, error)
	UpdateRole(id uint, role models.Role) error
	DeleteUser(id uint) error
}

type AdminHandler struct {
	users    UserProvider
	uploader images.Uploader
}

func NewAdminHandler(users UserProvider, uploader images.Uploader) *AdminHandler {
	return &AdminHandler{users: users, uploader: uploader}
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AdminHandler) HandleGetUsers(w http.ResponseWriter, r *http.Request) {
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

	users, total, err := h.users.GetAllUsers(offset, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	response := struct {
		Total int            `json:"total"`
		Users []UserResponse `json:"users"`
	}{
		Total: int(total),
		Users: make([]UserResponse, len(users)),
	}
	for i, u := range users {
		response.Users[i] = UserResponse{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      string(u.Role),
			CreatedAt: u.CreatedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

func (h *AdminHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	role := models.Role(input.Role)
	if role != models.RoleCustomer && role != models.RoleAdmin {
		httpx.WriteError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	// Admins cannot demote themselves; the back office must keep at least
	// this session's access intact.
	if sess, ok := session.FromContext(r.Context()); ok && sess.UserID == uint(id) && role != models.RoleAdmin {
		httpx.WriteError(w, http.StatusBadRequest, "Cannot change your own role")
		return
	}

	if err := h.users.UpdateRole(uint(id), role); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if sess, ok := session.FromContext(r.Context()); ok && sess.UserID == uint(id) {
		httpx.WriteError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.users.DeleteUser(uint(id)); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpload forwards a product image to the third-party host and returns
// the hosted URL for use on a product.
func (h *AdminHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, "Image upload failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// Register mounts user administration and upload routes.
func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/users", h.HandleGetUsers)
	r.Patch("/users/{id}/role", h.HandleUpdateRole)
	r.Delete("/users/{id}", h.HandleDeleteUser)
	r.Post("/uploads", h.HandleUpload)
}

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sufrahub/sufra/app/httpx"
	"github.com/sufrahub/sufra/internal/platform/mail"
	"github.com/sufrahub/sufra/internal/session"
	"github.com/sufrahub/sufra/models"
)

const resetPurpose = "password_reset"

type UserProvider interface {
	CreateUser(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	UpdatePassword(id uint, passwordHash string) error
}

type AuthHandler struct {
	users    UserProvider
	sessions session.Store
	mailer   mail.Mailer
	logger   *slog.Logger

	sessionTTL time.Duration
	resetKey   []byte
	resetTTL   time.Duration
}

func NewAuthHandler(users UserProvider, sessions session.Store, mailer mail.Mailer, logger *slog.Logger, sessionTTL time.Duration, resetKey string, resetTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		mailer:     mailer,
		logger:     logger,
		sessionTTL: sessionTTL,
		resetKey:   []byte(resetKey),
		resetTTL:   resetTTL,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sess session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		httpx.WriteError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(input.Password) < 8 {
		httpx.WriteError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	if input.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	user := &models.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
	}
	if err := h.users.CreateUser(user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			httpx.WriteError(w, http.StatusConflict, "Email already registered")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	sess := session.New(user, h.sessionTTL)
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.setSessionCookie(w, sess)

	httpx.WriteJSON(w, http.StatusCreated, userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.users.GetByEmail(strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		// Uniform response for unknown email and bad password.
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	sess := session.New(user, h.sessionTTL)
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.setSessionCookie(w, sess)

	httpx.WriteJSON(w, http.StatusOK, userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.Error("failed to delete session", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.users.GetByID(sess.UserID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})
}

// HandleForgotPassword mails a short-lived signed reset token. The response
// is identical whether or not the email exists.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	accepted := func() {
		httpx.WriteJSON(w, http.StatusAccepted, map[string]string{
			"message": "If the email is registered, a reset link has been sent",
		})
	}

	user, err := h.users.GetByEmail(strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		accepted()
		return
	}

	token, err := h.newResetToken(user)
	if err != nil {
		h.logger.Error("failed to sign reset token", "err", err)
		accepted()
		return
	}

	body := fmt.Sprintf("Use this token to reset your Sufra password (valid for %s):\n\n%s", h.resetTTL, token)
	if err := h.mailer.Send(r.Context(), user.Email, "Reset your Sufra password", body); err != nil {
		h.logger.Error("failed to send reset mail", "err", err)
	}
	accepted()
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(input.Password) < 8 {
		httpx.WriteError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	userID, err := h.parseResetToken(input.Token)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired reset token")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if err := h.users.UpdatePassword(userID, string(hash)); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandler) newResetToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     fmt.Sprintf("%d", user.ID),
		"purpose": resetPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(h.resetTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.resetKey)
}

func (h *AuthHandler) parseResetToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.resetKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != resetPurpose {
		return 0, fmt.Errorf("not a reset token")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	var userID uint
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil || userID == 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return userID, nil
}

// Register mounts the auth routes. HandleMe sits behind RequireUser in the
// router; the rest are public.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/auth/password/forgot", h.HandleForgotPassword)
	r.Post("/auth/password/reset", h.HandleResetPassword)
}

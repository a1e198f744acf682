package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saniya177/satellisense-backend/config"
	"github.com/saniya177/satellisense-backend/models"
	"github.com/saniya177/satellisense-backend/repository"
	"github.com/saniya177/satellisense-backend/session"
)

type AuthHandler struct {
	Cfg      config.Config
	UserRepo repository.UserRepository
	Sessions *session.Store
}

func NewAuthHandler(cfg config.Config, userRepo repository.UserRepository, sessions *session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, UserRepo: userRepo, Sessions: sessions}
}

type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) issueToken(user *models.User) (string, time.Time, error) {
	expirationTime := time.Now().Add(time.Duration(h.Cfg.JWTExpiryHours) * time.Hour)
	claims := &jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "satellisense-backend",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.Cfg.JWTSecret))
	return tokenString, expirationTime, err
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Username and password required.")
		return
	}

	newUser := &models.User{Username: payload.Username}
	if err := newUser.SetPassword(payload.Password); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to hash password")
		return
	}
	if err := h.UserRepo.Create(newUser); err != nil {
		// most likely a unique-constraint violation on the username
		WriteAPIError(w, http.StatusConflict, CodeValidation, "Username already taken")
		return
	}

	tokenString, expiresAt, err := h.issueToken(newUser)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusCreated, LoginResponse{Token: tokenString, User: *newUser, ExpiresAt: expiresAt})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Username and password required.")
		return
	}

	user, err := h.UserRepo.GetByUsername(payload.Username)
	if err != nil || !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid username or password")
		return
	}

	tokenString, expiresAt, err := h.issueToken(user)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: tokenString, User: *user, ExpiresAt: expiresAt})
}

// Logout clears the user's server-side session state (current image, chat
// history). The token itself is discarded client-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}
	h.Sessions.Clear(user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

// CurrentUser returns the authenticated user from the request context.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

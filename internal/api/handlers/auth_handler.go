package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/backloghub/engine/internal/api/types"
	"github.com/backloghub/engine/internal/api/validators"
	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/repository"
)

type AuthHandler struct {
	users      repository.UserRepository
	hmacSecret []byte
}

func NewAuthHandler(users repository.UserRepository, secret []byte) *AuthHandler {
	return &AuthHandler{users: users, hmacSecret: secret}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	u := models.User{
		Email:          req.Email,
		PasswordHash:   string(ph),
		Name:           req.Name,
		GithubUsername: req.GithubUsername,
	}
	if err := h.users.Create(r.Context(), &u); err != nil {
		writeErrorStr(w, http.StatusConflict, "email already exists")
		return
	}

	writeJSON(w, http.StatusCreated, types.APIResponse{
		Success: true,
		Data: map[string]any{
			"id":              u.ID,
			"email":           u.Email,
			"name":            u.Name,
			"github_username": u.GithubUsername,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErrorStr(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var u models.User
	if err := h.users.GetByEmail(r.Context(), req.Email, &u); err != nil {
		writeErrorStr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeErrorStr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u.ID.String(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(h.hmacSecret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: map[string]any{
			"access_token": tokenString,
			"token_type":   "Bearer",
			"expires_in":   86400,
			"user": map[string]any{
				"id":              u.ID,
				"email":           u.Email,
				"name":            u.Name,
				"github_username": u.GithubUsername,
			},
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

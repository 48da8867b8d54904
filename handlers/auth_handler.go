package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slug := chi.URLParam(r, "slug")
	result, err := h.authService.Login(r.Context(), slug, input.Username, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"auth": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), claims.AdminID, input.CurrentPassword, input.NewPassword); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "password updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ForgotPassword always answers with the same message so usernames cannot
// be probed.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.authService.RequestPasswordReset(r.Context(), slug, input.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	message := "se o usuário existir, um e-mail de recuperação foi enviado"
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.authService.ResetPasswordByToken(r.Context(), input.Token, input.NewPassword); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "password updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

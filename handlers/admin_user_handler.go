package handlers

import (
	"net/http"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/services"
)

type AdminUserHandler struct {
	adminUserService services.AdminUserService
}

func NewAdminUserHandler(adminUserService services.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{adminUserService: adminUserService}
}

// Create issues a new admin with one-time credentials; the password is only
// shown in this response.
func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
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

	credentials, err := h.adminUserService.Create(r.Context(), claims, input.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"credentials": credentials}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	admins, err := h.adminUserService.ListByCampaign(r.Context(), claims)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"admins": admins}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminUserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	adminID, err := getIDFromURL(r, "adminID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Active bool `json:"active"`
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

	if err := h.adminUserService.SetActive(r.Context(), claims, adminID, input.Active); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "admin updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminID, err := getIDFromURL(r, "adminID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	if err := h.adminUserService.Delete(r.Context(), claims, adminID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

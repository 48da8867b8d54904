package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/services"
)

const maxUploadBytes = 10 << 20 // 10MB

type CampaignHandler struct {
	campaignService services.CampaignService
}

func NewCampaignHandler(campaignService services.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// GetBySlug serves the public campaign payload. Inactive campaigns are
// still returned alongside a flag so the frontend can render the expired
// page.
func (h *CampaignHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	campaign, err := h.campaignService.GetBySlug(r.Context(), slug)
	if err != nil && !errors.Is(err, services.ErrCampaignInactive) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"campaign": campaign,
		"active":   campaign.IsActive,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CampaignHandler) Status(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	status, err := h.campaignService.Status(r.Context(), slug)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name           string `json:"name"`
		OrganizerEmail string `json:"organizer_email"`
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

	campaign, err := h.campaignService.GetByID(r.Context(), claims.CampaignID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	campaign.Name = input.Name
	if input.OrganizerEmail != "" {
		campaign.OrganizerEmail = input.OrganizerEmail
	}

	if err := h.campaignService.Update(r.Context(), campaign); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"campaign": campaign}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CampaignHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	file, header, err := formFile(r, "logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	campaign, err := h.campaignService.UploadLogo(r.Context(), claims.CampaignID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"campaign": campaign}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

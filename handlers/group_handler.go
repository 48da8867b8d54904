package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/services"
)

type GroupHandler struct {
	groupService    services.GroupService
	campaignService services.CampaignService
}

func NewGroupHandler(groupService services.GroupService, campaignService services.CampaignService) *GroupHandler {
	return &GroupHandler{groupService: groupService, campaignService: campaignService}
}

func (h *GroupHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	groups, err := h.groupService.ListByCampaign(r.Context(), campaign.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
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

	group := &models.Group{CampaignID: claims.CampaignID, Name: input.Name}
	if err := h.groupService.Create(r.Context(), group); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
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

	group := &models.Group{ID: groupID, CampaignID: claims.CampaignID, Name: input.Name}
	if err := h.groupService.Update(r.Context(), group); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.groupService.Delete(r.Context(), groupID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

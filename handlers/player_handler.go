package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/services"
)

type PlayerHandler struct {
	playerService   services.PlayerService
	campaignService services.CampaignService
}

func NewPlayerHandler(playerService services.PlayerService, campaignService services.CampaignService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService, campaignService: campaignService}
}

func (h *PlayerHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	players, err := h.playerService.ListByCampaign(r.Context(), campaign.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.ListByTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TeamID   int     `json:"team_id"`
		Name     string  `json:"name"`
		Number   *int    `json:"number,omitempty"`
		Position *string `json:"position,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player := &models.Player{
		TeamID:   input.TeamID,
		Name:     input.Name,
		Number:   input.Number,
		Position: input.Position,
	}
	if err := h.playerService.Create(r.Context(), player); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamID   int     `json:"team_id"`
		Name     string  `json:"name"`
		Number   *int    `json:"number,omitempty"`
		Position *string `json:"position,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player := &models.Player{
		ID:       playerID,
		TeamID:   input.TeamID,
		Name:     input.Name,
		Number:   input.Number,
		Position: input.Position,
	}
	if err := h.playerService.Update(r.Context(), player); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

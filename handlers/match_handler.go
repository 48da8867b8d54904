package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/services"
)

type MatchHandler struct {
	matchService    services.MatchService
	campaignService services.CampaignService
}

func NewMatchHandler(matchService services.MatchService, campaignService services.CampaignService) *MatchHandler {
	return &MatchHandler{matchService: matchService, campaignService: campaignService}
}

func (h *MatchHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	matches, err := h.matchService.ListByCampaign(r.Context(), campaign.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type matchInput struct {
	HomeTeamID  int                 `json:"home_team_id"`
	AwayTeamID  *int                `json:"away_team_id,omitempty"`
	Phase       models.MatchPhase   `json:"phase"`
	GroupID     *int                `json:"group_id,omitempty"`
	Round       *int                `json:"round,omitempty"`
	BracketSide *models.BracketSide `json:"bracket_side,omitempty"`
	Slot        *int                `json:"slot,omitempty"`
	MatchDate   *time.Time          `json:"match_date,omitempty"`
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input matchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	match := &models.Match{
		CampaignID:  claims.CampaignID,
		HomeTeamID:  input.HomeTeamID,
		AwayTeamID:  input.AwayTeamID,
		Phase:       input.Phase,
		GroupID:     input.GroupID,
		Round:       input.Round,
		BracketSide: input.BracketSide,
		Slot:        input.Slot,
		MatchDate:   input.MatchDate,
	}
	created, err := h.matchService.Create(r.Context(), match)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input matchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	match.HomeTeamID = input.HomeTeamID
	match.AwayTeamID = input.AwayTeamID
	match.Phase = input.Phase
	match.GroupID = input.GroupID
	match.Round = input.Round
	match.BracketSide = input.BracketSide
	match.Slot = input.Slot
	match.MatchDate = input.MatchDate

	if err := h.matchService.Update(r.Context(), match); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterResult records the final score; knockout winners advance into the
// next phase automatically.
func (h *MatchHandler) RegisterResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RegisterResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecordGoal(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID int `json:"player_id"`
		TeamID   int `json:"team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	goal := &models.Goal{MatchID: matchID, PlayerID: input.PlayerID, TeamID: input.TeamID}
	if err := h.matchService.RecordGoal(r.Context(), goal); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"goal": goal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecordCard(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID int             `json:"player_id"`
		TeamID   int             `json:"team_id"`
		CardType models.CardType `json:"card_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	card := &models.Card{MatchID: matchID, PlayerID: input.PlayerID, TeamID: input.TeamID, CardType: input.CardType}
	if err := h.matchService.RecordCard(r.Context(), card); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"card": card}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

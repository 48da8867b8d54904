package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/services"
)

type StatsHandler struct {
	statsService    services.StatsService
	bracketService  services.BracketService
	campaignService services.CampaignService
}

func NewStatsHandler(
	statsService services.StatsService,
	bracketService services.BracketService,
	campaignService services.CampaignService,
) *StatsHandler {
	return &StatsHandler{
		statsService:    statsService,
		bracketService:  bracketService,
		campaignService: campaignService,
	}
}

func (h *StatsHandler) GroupStandings(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.statsService.GroupStandings(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) TopScorers(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	scorers, err := h.statsService.TopScorers(r.Context(), campaign.ID, limitParam(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scorers": scorers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) TopCarded(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	carded, err := h.statsService.TopCarded(r.Context(), campaign.ID, limitParam(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"cards": carded}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Defenses(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	limit := limitParam(r)
	best, err := h.statsService.BestDefenses(r.Context(), campaign.ID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	worst, err := h.statsService.WorstDefenses(r.Context(), campaign.ID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"best_defenses": best, "worst_defenses": worst}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	view, err := h.bracketService.View(r.Context(), campaign.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// limitParam reads the optional ?limit= query parameter; the service clamps
// it to sane bounds.
func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

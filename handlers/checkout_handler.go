package handlers

import (
	"net/http"

	"github.com/copafacil/copa-manager/services"
)

type CheckoutHandler struct {
	checkoutService services.CheckoutService
	trialService    services.TrialService
}

func NewCheckoutHandler(checkoutService services.CheckoutService, trialService services.TrialService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, trialService: trialService}
}

func (h *CheckoutHandler) Plans(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"plans": h.checkoutService.Plans()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckSlug answers the signup form's availability probe.
func (h *CheckoutHandler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")

	normalized, err := h.checkoutService.CheckSlug(r.Context(), slug)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"slug": normalized, "available": true}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PlanID     string `json:"plan_id"`
		CouponCode string `json:"coupon_code,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	quote, err := h.checkoutService.Quote(r.Context(), input.PlanID, input.CouponCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"quote": quote}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	var input services.StartCheckoutInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	redirectURL, err := h.checkoutService.Start(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"checkout_url": redirectURL}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CheckoutHandler) StartTrial(w http.ResponseWriter, r *http.Request) {
	var input services.StartTrialInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	purchase, err := h.trialService.Start(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"campaign_slug": purchase.CampaignSlug,
		"expires_at":    purchase.ExpiresAt,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

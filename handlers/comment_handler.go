package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/services"
)

type CommentHandler struct {
	commentService  services.CommentService
	campaignService services.CampaignService
}

func NewCommentHandler(commentService services.CommentService, campaignService services.CampaignService) *CommentHandler {
	return &CommentHandler{commentService: commentService, campaignService: campaignService}
}

func (h *CommentHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	comments, err := h.commentService.ListPublic(r.Context(), campaign.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"comments": comments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create is the only public write on a campaign site.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input struct {
		Author string `json:"author"`
		Body   string `json:"body"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comment := &models.Comment{
		CampaignID: campaign.ID,
		Author:     input.Author,
		Body:       input.Body,
	}
	if err := h.commentService.Create(r.Context(), comment); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"comment": comment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	comments, err := h.commentService.ListAll(r.Context(), claims.CampaignID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"comments": comments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommentHandler) SetApproved(w http.ResponseWriter, r *http.Request) {
	commentID, err := getIDFromURL(r, "commentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Approved bool `json:"approved"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.commentService.SetApproved(r.Context(), commentID, input.Approved); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "comment updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, err := getIDFromURL(r, "commentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.commentService.Delete(r.Context(), commentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/services"
)

// ContentHandler serves the campaign site content blocks: photo gallery,
// announcements and sponsor strip.
type ContentHandler struct {
	photoService        services.PhotoService
	announcementService services.AnnouncementService
	sponsorService      services.SponsorService
	campaignService     services.CampaignService
}

func NewContentHandler(
	photoService services.PhotoService,
	announcementService services.AnnouncementService,
	sponsorService services.SponsorService,
	campaignService services.CampaignService,
) *ContentHandler {
	return &ContentHandler{
		photoService:        photoService,
		announcementService: announcementService,
		sponsorService:      sponsorService,
		campaignService:     campaignService,
	}
}

func (h *ContentHandler) resolveCampaignID(w http.ResponseWriter, r *http.Request) (int, bool) {
	campaign, err := h.campaignService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return 0, false
	}
	return campaign.ID, true
}

func (h *ContentHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.resolveCampaignID(w, r)
	if !ok {
		return
	}

	photos, err := h.photoService.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"photos": photos}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	file, header, err := formFile(r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	var caption *string
	if v := r.FormValue("caption"); v != "" {
		caption = &v
	}

	photo, err := h.photoService.Upload(r.Context(), claims.CampaignID, caption, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"photo": photo}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) UpdatePhotoCaption(w http.ResponseWriter, r *http.Request) {
	photoID, err := getIDFromURL(r, "photoID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Caption *string `json:"caption"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.photoService.UpdateCaption(r.Context(), photoID, input.Caption); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "caption updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := getIDFromURL(r, "photoID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.photoService.Delete(r.Context(), photoID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.resolveCampaignID(w, r)
	if !ok {
		return
	}

	announcements, err := h.announcementService.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"announcements": announcements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type announcementInput struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Pinned bool   `json:"pinned"`
}

func (h *ContentHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var input announcementInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	announcement := &models.Announcement{
		CampaignID: claims.CampaignID,
		Title:      input.Title,
		Body:       input.Body,
		Pinned:     input.Pinned,
	}
	if err := h.announcementService.Create(r.Context(), announcement); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"announcement": announcement}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcementID, err := getIDFromURL(r, "announcementID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input announcementInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	announcement := &models.Announcement{
		ID:         announcementID,
		CampaignID: claims.CampaignID,
		Title:      input.Title,
		Body:       input.Body,
		Pinned:     input.Pinned,
	}
	if err := h.announcementService.Update(r.Context(), announcement); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"announcement": announcement}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) PinAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcementID, err := getIDFromURL(r, "announcementID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Pinned bool `json:"pinned"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.announcementService.SetPinned(r.Context(), announcementID, input.Pinned); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "announcement updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcementID, err := getIDFromURL(r, "announcementID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.announcementService.Delete(r.Context(), announcementID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ListSponsors(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.resolveCampaignID(w, r)
	if !ok {
		return
	}

	sponsors, err := h.sponsorService.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsors": sponsors}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type sponsorInput struct {
	Name     string  `json:"name"`
	LinkURL  *string `json:"link_url,omitempty"`
	Position int     `json:"position"`
}

func (h *ContentHandler) CreateSponsor(w http.ResponseWriter, r *http.Request) {
	var input sponsorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	sponsor := &models.Sponsor{
		CampaignID: claims.CampaignID,
		Name:       input.Name,
		LinkURL:    input.LinkURL,
		Position:   input.Position,
	}
	if err := h.sponsorService.Create(r.Context(), sponsor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) UpdateSponsor(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input sponsorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "failed to identify current admin")
		return
	}

	sponsor := &models.Sponsor{
		ID:         sponsorID,
		CampaignID: claims.CampaignID,
		Name:       input.Name,
		LinkURL:    input.LinkURL,
		Position:   input.Position,
	}
	if err := h.sponsorService.Update(r.Context(), sponsor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) UploadSponsorImage(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := formFile(r, "image")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	sponsor, err := h.sponsorService.UploadImage(r.Context(), sponsorID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) ReorderSponsors(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OrderedIDs []int `json:"ordered_ids"`
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

	if err := h.sponsorService.Reorder(r.Context(), claims.CampaignID, input.OrderedIDs); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "sponsors reordered"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContentHandler) DeleteSponsor(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sponsorService.Delete(r.Context(), sponsorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/copafacil/copa-manager/brackets"
	"github.com/copafacil/copa-manager/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The public site is served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler subscribes viewers to a campaign's live updates.
type WebSocketHandler struct {
	hub             *brackets.Hub
	campaignService services.CampaignService
	logger          *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, campaignService services.CampaignService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, campaignService: campaignService, logger: logger}
}

func (h *WebSocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if _, err := h.campaignService.GetBySlug(r.Context(), slug); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "slug", slug, "error", err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: slug,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/copafacil/copa-manager/handlers"
	"github.com/copafacil/copa-manager/middleware"
	"github.com/copafacil/copa-manager/services"
)

// Handlers groups everything the router wires.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Campaign  *handlers.CampaignHandler
	Team      *handlers.TeamHandler
	Group     *handlers.GroupHandler
	Player    *handlers.PlayerHandler
	Match     *handlers.MatchHandler
	Stats     *handlers.StatsHandler
	Comment   *handlers.CommentHandler
	Content   *handlers.ContentHandler
	Checkout  *handlers.CheckoutHandler
	Webhook   *handlers.WebhookHandler
	AdminUser *handlers.AdminUserHandler
	WebSocket *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, authService services.AuthService, campaignService services.CampaignService) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Platform-level public endpoints: plans, signup, payment callbacks.
	router.Get("/plans", h.Checkout.Plans)
	router.Get("/slug-check", h.Checkout.CheckSlug)
	router.Post("/checkout/quote", h.Checkout.Quote)
	router.Post("/checkout", h.Checkout.Start)
	router.Post("/trial", h.Checkout.StartTrial)
	router.Post("/webhooks/stripe", h.Webhook.Stripe)
	router.Post("/webhooks/mercadopago", h.Webhook.MercadoPago)
	router.Post("/auth/reset-password", h.Auth.ResetPassword)

	// Campaign-scoped routes, addressed by slug.
	router.Route("/campaigns/{slug}", func(r chi.Router) {
		// Public reads of the campaign site.
		r.Get("/", h.Campaign.GetBySlug)
		r.Get("/status", h.Campaign.Status)
		r.Get("/teams", h.Team.ListByCampaign)
		r.Get("/teams/{teamID}", h.Team.GetByID)
		r.Get("/teams/{teamID}/players", h.Player.ListByTeam)
		r.Get("/groups", h.Group.ListByCampaign)
		r.Get("/groups/{groupID}/standings", h.Stats.GroupStandings)
		r.Get("/players", h.Player.ListByCampaign)
		r.Get("/matches", h.Match.ListByCampaign)
		r.Get("/matches/{matchID}", h.Match.GetByID)
		r.Get("/scorers", h.Stats.TopScorers)
		r.Get("/cards", h.Stats.TopCarded)
		r.Get("/defenses", h.Stats.Defenses)
		r.Get("/bracket", h.Stats.Bracket)
		r.Get("/comments", h.Comment.ListPublic)
		r.Get("/photos", h.Content.ListPhotos)
		r.Get("/announcements", h.Content.ListAnnouncements)
		r.Get("/sponsors", h.Content.ListSponsors)
		r.Get("/live", h.WebSocket.Subscribe)

		// Public writes.
		r.Post("/comments", h.Comment.Create)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/forgot-password", h.Auth.ForgotPassword)

		// Admin panel, token-gated and scoped to this campaign.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(authService))
			r.Use(middleware.CampaignScope(campaignService))

			r.Post("/auth/change-password", h.Auth.ChangePassword)

			r.Put("/campaign", h.Campaign.Update)
			r.Post("/campaign/logo", h.Campaign.UploadLogo)

			r.Post("/teams", h.Team.Create)
			r.Put("/teams/{teamID}", h.Team.Update)
			r.Post("/teams/{teamID}/logo", h.Team.UploadLogo)
			r.Delete("/teams/{teamID}", h.Team.Delete)

			r.Post("/groups", h.Group.Create)
			r.Put("/groups/{groupID}", h.Group.Update)
			r.Delete("/groups/{groupID}", h.Group.Delete)

			r.Post("/players", h.Player.Create)
			r.Put("/players/{playerID}", h.Player.Update)
			r.Delete("/players/{playerID}", h.Player.Delete)

			r.Post("/matches", h.Match.Create)
			r.Put("/matches/{matchID}", h.Match.Update)
			r.Post("/matches/{matchID}/result", h.Match.RegisterResult)
			r.Post("/matches/{matchID}/goals", h.Match.RecordGoal)
			r.Post("/matches/{matchID}/cards", h.Match.RecordCard)
			r.Delete("/matches/{matchID}", h.Match.Delete)

			r.Get("/comments", h.Comment.ListAll)
			r.Patch("/comments/{commentID}", h.Comment.SetApproved)
			r.Delete("/comments/{commentID}", h.Comment.Delete)

			r.Post("/photos", h.Content.UploadPhoto)
			r.Patch("/photos/{photoID}", h.Content.UpdatePhotoCaption)
			r.Delete("/photos/{photoID}", h.Content.DeletePhoto)

			r.Post("/announcements", h.Content.CreateAnnouncement)
			r.Put("/announcements/{announcementID}", h.Content.UpdateAnnouncement)
			r.Patch("/announcements/{announcementID}/pin", h.Content.PinAnnouncement)
			r.Delete("/announcements/{announcementID}", h.Content.DeleteAnnouncement)

			r.Post("/sponsors", h.Content.CreateSponsor)
			r.Put("/sponsors/{sponsorID}", h.Content.UpdateSponsor)
			r.Post("/sponsors/{sponsorID}/image", h.Content.UploadSponsorImage)
			r.Put("/sponsors/order", h.Content.ReorderSponsors)
			r.Delete("/sponsors/{sponsorID}", h.Content.DeleteSponsor)

			// Owner-only admin account management.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOwner)
				r.Get("/admins", h.AdminUser.List)
				r.Post("/admins", h.AdminUser.Create)
				r.Patch("/admins/{adminID}", h.AdminUser.SetActive)
				r.Delete("/admins/{adminID}", h.AdminUser.Delete)
			})
		})
	})

	return router
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/copafacil/copa-manager/brackets"
	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/db"
	"github.com/copafacil/copa-manager/handlers"
	"github.com/copafacil/copa-manager/payments"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/routes"
	"github.com/copafacil/copa-manager/services"
	"github.com/copafacil/copa-manager/storage"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

const (
	expirationSchedule  = "0 * * * *"  // hourly
	provisioningResume  = "*/5 * * * *"
	backgroundJobWindow = 10 * time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	stripeGateway := payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mercadoPago := payments.NewMercadoPagoClient(cfg.MercadoPagoAccessToken, cfg.MercadoPagoWebhookSecret)
	logger.Info("payment gateways initialized")

	hub := brackets.NewHub(logger)
	go hub.Run()
	logger.Info("WebSocket hub started")

	campaignRepo := repositories.NewPostgresCampaignRepository(dbConn)
	purchaseRepo := repositories.NewPostgresPurchaseRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	adminRepo := repositories.NewPostgresAdminUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	goalRepo := repositories.NewPostgresGoalRepository(dbConn)
	cardRepo := repositories.NewPostgresCardRepository(dbConn)
	commentRepo := repositories.NewPostgresCommentRepository(dbConn)
	photoRepo := repositories.NewPostgresPhotoRepository(dbConn)
	announcementRepo := repositories.NewPostgresAnnouncementRepository(dbConn)
	sponsorRepo := repositories.NewPostgresSponsorRepository(dbConn)
	couponRepo := repositories.NewPostgresCouponRepository(dbConn)
	reservedRepo := repositories.NewPostgresReservedSlugRepository(dbConn)
	logger.Info("repositories initialized")

	emailService := services.NewEmailService(cfg)

	provisioningService := services.NewProvisioningService(purchaseRepo, campaignRepo, userRepo, adminRepo, couponRepo, emailService, cfg, logger)
	authService := services.NewAuthService(adminRepo, campaignRepo, emailService, cfg, logger)
	campaignService := services.NewCampaignService(campaignRepo, purchaseRepo, uploader, logger)
	checkoutService := services.NewCheckoutService(campaignRepo, reservedRepo, couponRepo, stripeGateway, mercadoPago, cfg, logger)
	trialService := services.NewTrialService(checkoutService, provisioningService, logger)
	webhookService := services.NewWebhookService(stripeGateway, mercadoPago, provisioningService, logger)
	expirationService := services.NewExpirationService(purchaseRepo, campaignRepo, emailService, cfg, logger)

	teamService := services.NewTeamService(teamRepo, uploader)
	groupService := services.NewGroupService(groupRepo)
	playerService := services.NewPlayerService(playerRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, teamRepo, goalRepo, cardRepo, campaignRepo, hub, logger)
	statsService := services.NewStatsService(teamRepo, matchRepo, goalRepo, cardRepo)
	bracketService := services.NewBracketService(matchRepo)

	commentService := services.NewCommentService(commentRepo, campaignRepo)
	photoService := services.NewPhotoService(photoRepo, uploader, logger)
	announcementService := services.NewAnnouncementService(announcementRepo)
	sponsorService := services.NewSponsorService(sponsorRepo, uploader, logger)
	adminUserService := services.NewAdminUserService(adminRepo)
	logger.Info("services initialized")

	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Campaign:  handlers.NewCampaignHandler(campaignService),
		Team:      handlers.NewTeamHandler(teamService, campaignService),
		Group:     handlers.NewGroupHandler(groupService, campaignService),
		Player:    handlers.NewPlayerHandler(playerService, campaignService),
		Match:     handlers.NewMatchHandler(matchService, campaignService),
		Stats:     handlers.NewStatsHandler(statsService, bracketService, campaignService),
		Comment:   handlers.NewCommentHandler(commentService, campaignService),
		Content:   handlers.NewContentHandler(photoService, announcementService, sponsorService, campaignService),
		Checkout:  handlers.NewCheckoutHandler(checkoutService, trialService),
		Webhook:   handlers.NewWebhookHandler(webhookService, logger),
		AdminUser: handlers.NewAdminUserHandler(adminUserService),
		WebSocket: handlers.NewWebSocketHandler(hub, campaignService, logger),
	}
	router := routes.InitRoutes(h, authService, campaignService)
	logger.Info("routes configured")

	// Background jobs: the hourly expiration sweep and the provisioning
	// recovery pass. SkipIfStillRunning keeps a slow sweep from piling up.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(expirationSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundJobWindow)
		defer cancel()
		if err := expirationService.Run(ctx); err != nil {
			logger.Error("expiration sweep failed", slog.Any("error", err))
		}
	}); err != nil {
		logger.Error("failed to schedule expiration sweep", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc(provisioningResume, func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundJobWindow)
		defer cancel()
		resumed, err := provisioningService.ResumeStuck(ctx)
		if err != nil {
			logger.Error("provisioning recovery failed", slog.Any("error", err))
		}
		if resumed > 0 {
			logger.Info("resumed stuck provisionings", slog.Int("count", resumed))
		}
	}); err != nil {
		logger.Error("failed to schedule provisioning recovery", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("background scheduler started")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

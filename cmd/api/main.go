package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wastewise/wastewise-api/internal/config"
	"github.com/wastewise/wastewise-api/internal/domain/account"
	"github.com/wastewise/wastewise-api/internal/domain/achievement"
	"github.com/wastewise/wastewise-api/internal/domain/classification"
	"github.com/wastewise/wastewise-api/internal/domain/feed"
	"github.com/wastewise/wastewise-api/internal/domain/leaderboard"
	"github.com/wastewise/wastewise-api/internal/domain/ledger"
	"github.com/wastewise/wastewise-api/internal/domain/nft"
	"github.com/wastewise/wastewise-api/internal/middleware"
	"github.com/wastewise/wastewise-api/internal/pkg/authz"
	"github.com/wastewise/wastewise-api/internal/pkg/blockchain"
	"github.com/wastewise/wastewise-api/internal/pkg/contentstore"
	"github.com/wastewise/wastewise-api/internal/pkg/database"
	"github.com/wastewise/wastewise-api/internal/pkg/jwt"
	"github.com/wastewise/wastewise-api/internal/pkg/logger"
	"github.com/wastewise/wastewise-api/internal/pkg/oracle"
	"github.com/wastewise/wastewise-api/internal/pkg/response"
	"github.com/wastewise/wastewise-api/internal/scheduler"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting WasteWise API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	policy := authz.NewAllowlistPolicy(cfg.AdminWallets)

	store, err := contentstore.NewS3Store(contentstore.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create content store")
	}

	scorer := oracle.NewClient(cfg.OracleBaseURL, cfg.OracleTimeout)
	chain := blockchain.NewClient(cfg.RelayerBaseURL, cfg.RelayerToken, cfg.RelayerTimeout)

	// ---------- Repositories ----------
	scoreRepo := ledger.NewRepository(db)
	classificationRepo := classification.NewRepository(db)
	achievementRepo := achievement.NewRepository(db, scoreRepo)
	nftRepo := nft.NewRepository(db)
	boardRepo := leaderboard.NewRepository(db)

	// ---------- Live feed ----------
	feedHub := feed.NewHub(redis)
	go feedHub.Run()
	defer feedHub.Stop()
	publisher := feed.NewPublisher(feedHub)

	// ---------- Services ----------
	scoreService := ledger.NewService(scoreRepo)
	accountService := account.NewService(scoreRepo, classificationRepo)
	classificationService := classification.NewService(classificationRepo, scorer, scoreService, publisher)
	achievementService := achievement.NewService(achievementRepo, accountService, publisher)
	nftService := nft.NewService(nftRepo, accountService, chain, store, nft.Config{
		ReservationTTL: cfg.ReservationTTL,
		TreasuryWallet: cfg.TreasuryWallet,
		MintPause:      2 * time.Second,
	})
	nftService.SetEvents(publisher)
	boardService := leaderboard.NewService(boardRepo, redis)

	// ---------- Background sweeps ----------
	sweeps, err := scheduler.New(scheduler.Config{
		SweepInterval:     cfg.SweepInterval,
		PendingAttemptTTL: cfg.PendingAttemptTTL,
	}, nftService, boardService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	sweeps.Start()
	defer sweeps.Stop()

	// ---------- Handlers ----------
	scoreHandler := ledger.NewHandler(scoreService)
	classificationHandler := classification.NewHandler(classificationService)
	accountHandler := account.NewHandler(accountService)
	achievementHandler := achievement.NewHandler(achievementService)
	nftHandler := nft.NewHandler(nftService)
	boardHandler := leaderboard.NewHandler(boardService)
	feedHandler := feed.NewHandler(feedHub, cfg.AllowedOrigins, cfg.IsDevelopment())

	manageAchievements := middleware.AdminAuth(jwtService, policy, authz.CapManageAchievements)
	managePool := middleware.AdminAuth(jwtService, policy, authz.CapManagePool)
	adjustLedger := middleware.AdminAuth(jwtService, policy, authz.CapAdjustLedger)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint stays outside Compress
	r.Mount("/feed", feedHandler.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/classifications", classificationHandler.Routes())
		r.Mount("/accounts", accountHandler.Routes())
		r.Mount("/score", scoreHandler.Routes(adjustLedger))
		r.Mount("/achievements", achievementHandler.Routes(manageAchievements))
		r.Mount("/nft", nftHandler.Routes(managePool))
		r.Mount("/leaderboard", boardHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mwrona/fuelroute/config"
	"github.com/mwrona/fuelroute/internal/handler"
	"github.com/mwrona/fuelroute/internal/middleware"
	"github.com/mwrona/fuelroute/internal/repository"
	"github.com/mwrona/fuelroute/internal/service"
	"github.com/mwrona/fuelroute/internal/session"
	"github.com/mwrona/fuelroute/pkg/cache"
	"github.com/mwrona/fuelroute/pkg/db"
	"github.com/mwrona/fuelroute/pkg/route"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// ── Connect to PostgreSQL ───────────────────────────
	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer pgPool.Close()
	log.Println("✓ PostgreSQL connected")

	// ── Connect to Redis ────────────────────────────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ── Initialize layers ───────────────────────────────
	stationRepo := repository.NewStationRepository(pgPool, redisClient)
	offerRepo := repository.NewOfferRepository(pgPool)
	feedbackRepo := repository.NewFeedbackRepository(pgPool)
	accountRepo := repository.NewAccountRepository(pgPool)

	sessions := session.NewStore(session.NewRedisSlot(redisClient, session.DefaultSlotKey))
	engine := service.NewRecommendationEngine(stationRepo, route.EstimateRoute)

	// Pick up a persisted session from a previous run, if any.
	if _, err := sessions.Restore(ctx); err != nil {
		log.Printf("session restore skipped: %v", err)
	}

	authHandler := handler.NewAuthHandler(sessions, accountRepo)
	recommendHandler := handler.NewRecommendHandler(engine, sessions)
	stationHandler := handler.NewStationHandler(stationRepo, sessions)
	offerHandler := handler.NewOfferHandler(offerRepo, sessions)
	feedbackHandler := handler.NewFeedbackHandler(feedbackRepo, stationRepo, sessions)
	adminHandler := handler.NewAdminHandler(accountRepo, feedbackRepo, sessions)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	// Health check endpoint.
	router.HandleFunc("/health", healthHandler(pgPool, redisClient)).Methods(http.MethodGet)

	// API v1 routes.
	api := router.PathPrefix("/api/v1").Subrouter()
	// Session lifecycle
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/demo/{role}", authHandler.LoginDemo).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", authHandler.Session).Methods(http.MethodGet)
	api.HandleFunc("/profile", authHandler.UpdateProfile).Methods(http.MethodPut)
	// Routing recommendations
	api.HandleFunc("/recommend", recommendHandler.Recommend).Methods(http.MethodPost)
	// Station catalog
	api.HandleFunc("/stations", stationHandler.ListStations).Methods(http.MethodGet)
	api.HandleFunc("/stations/{id}/reviews", feedbackHandler.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/stations/{id}/reviews", feedbackHandler.AddReview).Methods(http.MethodPost)
	api.HandleFunc("/reports", feedbackHandler.AddReport).Methods(http.MethodPost)
	// Partner
	api.HandleFunc("/partner/stations", stationHandler.ReplaceOwnedStations).Methods(http.MethodPut)
	api.HandleFunc("/partner/offers", offerHandler.ListOffers).Methods(http.MethodGet)
	api.HandleFunc("/partner/offers", offerHandler.CreateOffer).Methods(http.MethodPost)
	api.HandleFunc("/partner/offers/{id}", offerHandler.DeleteOffer).Methods(http.MethodDelete)
	// Admin
	api.HandleFunc("/admin/users", adminHandler.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/admin/users/{id}/status", adminHandler.SetAccountStatus).Methods(http.MethodPost)
	api.HandleFunc("/admin/reports", adminHandler.ListReports).Methods(http.MethodGet)

	// Wrap with logging, panic recovery, and CORS for the dashboard client.
	wrapped := middleware.CORS(middleware.Recoverer(middleware.RequestLogger(router)))

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in a goroutine so we can listen for shutdown signals.
	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler returns an HTTP handler that checks PG and Redis connectivity.
func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: make(map[string]string),
		}

		if err := db.HealthCheck(r.Context(), pgPool); err != nil {
			resp.Status = "degraded"
			resp.Services["postgres"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["postgres"] = "healthy"
		}

		if err := cache.HealthCheck(r.Context(), redisClient); err != nil {
			resp.Status = "degraded"
			resp.Services["redis"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["redis"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

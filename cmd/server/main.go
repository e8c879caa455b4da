package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/fantaleague-api/internal/auth"
	"github.com/ksred/fantaleague-api/internal/config"
	"github.com/ksred/fantaleague-api/internal/database"
	"github.com/ksred/fantaleague-api/internal/notify"
	"github.com/ksred/fantaleague-api/internal/phase"
	"github.com/ksred/fantaleague-api/internal/roster"
	"github.com/ksred/fantaleague-api/internal/trade"
	"github.com/ksred/fantaleague-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the league API server with graceful shutdown
// support. It sets up all required services, the database connection,
// the notification dispatcher and the API routes.
func main() {
	cfg := config.Load()

	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Initialize services and handlers
	authService := auth.NewService(db, cfg.JWTSecret, cfg.AdminName, cfg.AdminPassword)
	authHandlers := auth.NewGinHandlers(authService)

	phaseService := phase.NewService(db)
	phaseHandlers := phase.NewGinHandlers(phaseService)

	rosterService := roster.NewService(db)
	rosterHandlers := roster.NewGinHandlers(rosterService)

	// Notifications are delivered off the request path by a background
	// worker; delivery currently logs the event.
	logSink := notify.NewLogDispatcher()
	dispatcher := notify.NewQueueDispatcher(func(event notify.Event) error {
		logSink.Notify(event.Kind, event.TradeID, event.TargetTeamID, event.Context...)
		return nil
	})
	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()
	go dispatcher.Start(dispatcherCtx)

	tradeService := trade.NewService(db, rosterService.GetDB(), phaseService, dispatcher)
	tradeHandlers := trade.NewGinHandlers(tradeService)

	// Setup middleware
	router.Use(middleware.RateLimit())

	setupRoutes(router, cfg.JWTSecret, authHandlers, tradeHandlers, rosterHandlers, phaseHandlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for team and admin login
// - Phase status: Public read of the trade window gate
// - Trade and roster routes: Protected by team JWT authentication
// - Admin routes: Protected by the admin role claim
func setupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authHandlers *auth.GinHandlers,
	tradeHandlers *trade.GinHandlers,
	rosterHandlers *roster.GinHandlers,
	phaseHandlers *phase.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandlers.LoginHandler())
			authGroup.POST("/admin/login", authHandlers.AdminLoginHandler())
			authGroup.POST("/password", middleware.TeamAuth(jwtSecret), authHandlers.ChangePasswordHandler())
		}

		// Phase gate, readable without authentication
		v1.GET("/phase", phaseHandlers.GetPhaseStatusHandler())

		// Trade routes
		trades := v1.Group("/trades")
		trades.Use(middleware.TeamAuth(jwtSecret))
		{
			trades.POST("", tradeHandlers.ProposeTradeHandler())
			trades.GET("", tradeHandlers.ListTradesHandler())
			trades.GET("/:trade_id", tradeHandlers.GetTradeHandler())
			trades.POST("/:trade_id/respond", tradeHandlers.RespondTradeHandler())
			trades.DELETE("/:trade_id", tradeHandlers.CancelTradeHandler())
		}

		// Roster routes
		rosters := v1.Group("/roster")
		rosters.Use(middleware.TeamAuth(jwtSecret))
		{
			rosters.GET("", rosterHandlers.MyRosterHandler())
			rosters.GET("/teams", rosterHandlers.AvailableTeamsHandler())
			rosters.GET("/players", rosterHandlers.AvailablePlayersHandler())
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(jwtSecret))
		{
			admin.GET("/trades", tradeHandlers.AdminListTradesHandler())
			admin.GET("/trades/:trade_id", tradeHandlers.AdminGetTradeHandler())
			admin.POST("/trades/:trade_id/decide", tradeHandlers.AdminDecideHandler())
			admin.POST("/phase", phaseHandlers.SetPhaseHandler())
			admin.GET("/phase/history", phaseHandlers.GetPhaseHistoryHandler())
			admin.GET("/teams/:team_id/roster", rosterHandlers.AdminTeamRosterHandler())
			admin.POST("/teams/:team_id/roster", rosterHandlers.AdminAddPlayerHandler())
			admin.DELETE("/teams/:team_id/roster/:player_id", rosterHandlers.AdminRemovePlayerHandler())
		}
	}
}

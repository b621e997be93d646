package main

import (
	"arcade/auth"
	"arcade/config"
	"arcade/crypto"
	"arcade/hub"
	"arcade/logger"
	"arcade/metrics"
	"arcade/migrations"
	"arcade/routing"
	"arcade/scores"
	"arcade/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func CreateServer(allowedOrigins []string, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

type dependencies struct {
	authService auth.AuthService
	repo        storage.Repository
	submitter   *scores.Submitter
	registry    *hub.Registry
	metrics     *metrics.Metrics
	tokenAge    time.Duration
}

// RegisterRoutes mounts every API route on r.
func RegisterRoutes(r *gin.Engine, deps dependencies) {
	authHandler := auth.NewAuthHandler(deps.authService, deps.tokenAge)
	requireAuth := authHandler.RequireAuthMiddleware(time.Second * 2)

	{
		auth := r.Group("/auth")
		auth.POST("/signup", authHandler.SignupHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.POST("/logout", authHandler.LogoutHandler)
		auth.GET("/refresh", authHandler.RefreshSessionHandler)
		auth.GET("/me", requireAuth, authHandler.MeHandler)
	}

	scoresHandler := scores.NewScoresHandler(deps.repo)
	{
		scoresGroup := r.Group("/scores")
		scoresGroup.Use(requireAuth)
		scoresGroup.POST("", scoresHandler.CreateScoreHandler)
		scoresGroup.GET("/me", scoresHandler.MyScoresHandler)
		scoresGroup.GET("/highscores/:gameType", scoresHandler.HighscoresHandler)
	}

	evaluator := routing.NewEvaluator(deps.repo, deps.metrics)
	gameHandler := hub.NewGameHandler(deps.repo, deps.repo, evaluator, deps.submitter, deps.registry, deps.metrics)
	{
		gameGroup := r.Group("/games")
		gameGroup.Use(requireAuth)

		gameGroup.GET("/whack/catalog", gameHandler.CatalogHandler)
		gameGroup.GET("/whack/play", gameHandler.PlayWhackHandler)

		gameGroup.GET("/metro/stations", gameHandler.StationsHandler)
		gameGroup.POST("/metro/check-route", gameHandler.CheckRouteHandler)
		gameGroup.GET("/metro/play", gameHandler.PlayMetroHandler)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		logger.Setup(true)
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Setup(cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	dsn := cfg.DSN()
	if cfg.StorageDriver == config.DriverSQLite {
		dsn = storage.SQLiteDSN(cfg.SQLitePath)
	}

	// run migrations
	if err := migrations.Migrate(cfg.StorageDriver, dsn); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// Dependencies
	repo, err := storage.Open(context.Background(), cfg.StorageDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("storage unavailable")
	}
	defer repo.Close()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(cfg.JWTKey, tokenAge)

	deps := dependencies{
		authService: auth.NewService(repo, passwordHasher, tokenManager),
		repo:        repo,
		submitter:   scores.NewSubmitter(repo, m, scores.DefaultSubmitTimeout),
		registry:    hub.NewRegistry(m),
		metrics:     m,
		tokenAge:    tokenAge,
	}

	r := CreateServer(cfg.AllowedOrigins, reg)
	RegisterRoutes(r, deps)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("addr", cfg.Addr).Str("storage", cfg.StorageDriver).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("SIGTERM or SIGINT received, closing sessions and flushing scores")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	deps.registry.CloseAll()
	deps.submitter.Wait()
	log.Info().Msg("Shutting down now")
}

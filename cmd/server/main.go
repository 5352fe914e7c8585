package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/crewdesk/backend/internal/api"
	"github.com/crewdesk/backend/internal/auth"
	"github.com/crewdesk/backend/internal/config"
	"github.com/crewdesk/backend/internal/db"
	apperrors "github.com/crewdesk/backend/internal/errors"
	"github.com/crewdesk/backend/internal/health"
	"github.com/crewdesk/backend/internal/logger"
	"github.com/crewdesk/backend/internal/mail"
	"github.com/crewdesk/backend/internal/metrics"
	"github.com/crewdesk/backend/internal/middleware"
	"github.com/crewdesk/backend/internal/ratelimit"
	"github.com/crewdesk/backend/internal/tasks"
	"github.com/crewdesk/backend/internal/users"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	logger.SetDefault(logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), ""))

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		log.Printf("WARNING: token secrets are not configured; logins will fail until ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are set")
	}

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Limiter fails open, so redis being down is not fatal.
			log.Printf("WARNING: redis unreachable at %s, login limiter failing open: %v", cfg.RedisAddr, err)
		}
		cancel()
	}

	userRepo := db.NewUserRepository(database)
	taskRepo := db.NewTaskRepository(database)

	issuer := auth.NewIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	limiter := ratelimit.NewLoginLimiter(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptsOver)
	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	authService := auth.NewService(userRepo, issuer)
	authHandlers := auth.NewHandlers(authService, limiter)
	userHandlers := users.NewHandlers(userRepo, mailer)
	taskHandlers := tasks.NewHandlers(taskRepo)

	checker := health.NewChecker(&health.CheckerConfig{
		DB:      database.DB,
		Redis:   redisClient,
		Version: version,
	})

	router := api.NewRouter(authHandlers, issuer, userHandlers, taskHandlers, checker, metrics.Default())

	handler := middleware.Chain(router,
		apperrors.RequestIDMiddleware,
		logger.LoggingMiddleware,
		logger.RecoveryMiddleware,
		middleware.CORS(cfg.CORSAllowedOrigins),
		metrics.Middleware(metrics.Default()),
	)

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := http.ListenAndServe(cfg.ServerAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

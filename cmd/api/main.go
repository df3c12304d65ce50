package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"st-blogs/internal/config"
	"st-blogs/internal/db"
	"st-blogs/internal/email"
	apihttp "st-blogs/internal/http"
	"st-blogs/internal/oauth"
	"st-blogs/internal/repository"
	"st-blogs/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	blogRepo := repository.NewPgBlogRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var otpLimiter service.OTPRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	sessionSvc := service.NewSessionService(cfg.JWTSecret)
	userSvc := service.NewUserService(logger, userRepo, emailSender, sessionSvc, cfg.ClientURL, otpLimiter)
	blogSvc := service.NewBlogService(logger, blogRepo)

	providers := make(map[string]oauth.Provider)
	if cfg.GoogleClientID != "" {
		providers["google"] = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBase+"/api/auth/google/callback")
	}
	if cfg.GithubClientID != "" {
		providers["github"] = oauth.NewGithubProvider(cfg.GithubClientID, cfg.GithubClientSecret, cfg.OAuthRedirectBase+"/api/auth/github/callback")
	}
	if cfg.LinkedinClientID != "" {
		providers["linkedin"] = oauth.NewLinkedinProvider(cfg.LinkedinClientID, cfg.LinkedinClientSecret, cfg.OAuthRedirectBase+"/api/auth/linkedin/callback")
	}

	authHandler := apihttp.NewAuthHandler(logger, userSvc, sessionSvc, cfg.IsProduction())
	blogHandler := apihttp.NewBlogHandler(logger, blogSvc)
	oauthHandler := apihttp.NewOAuthHandler(logger, userSvc, sessionSvc, providers, cfg.ClientURL, cfg.IsProduction())
	router := apihttp.NewRouter(logger, authHandler, blogHandler, oauthHandler, sessionSvc, cfg.ClientURL)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

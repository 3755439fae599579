package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jobprep-ai/jobprep/internal/api"
	"github.com/jobprep-ai/jobprep/internal/auth"
	"github.com/jobprep-ai/jobprep/internal/chats"
	"github.com/jobprep-ai/jobprep/internal/config"
	"github.com/jobprep-ai/jobprep/internal/database"
	"github.com/jobprep-ai/jobprep/internal/images"
	"github.com/jobprep-ai/jobprep/internal/interview"
	"github.com/jobprep-ai/jobprep/internal/llm"
	mw "github.com/jobprep-ai/jobprep/internal/middleware"
	"github.com/jobprep-ai/jobprep/internal/pricing"
	"github.com/jobprep-ai/jobprep/internal/quota"
	iredis "github.com/jobprep-ai/jobprep/internal/redis"
	"github.com/jobprep-ai/jobprep/internal/server"
	"github.com/jobprep-ai/jobprep/internal/tracker"
	"github.com/jobprep-ai/jobprep/internal/usage"
	"github.com/jobprep-ai/jobprep/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Shared infrastructure
	calc, err := pricing.NewDefault()
	if err != nil {
		slog.Error("loading pricing table", "error", err)
		os.Exit(1)
	}
	sessions := tracker.NewManager()
	llmClient := llm.NewClient(&llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	})
	quotaSvc := quota.NewService(quota.NewRepository(pool), cfg.Quota.MaxCallsPerDay)

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	authHandler := auth.NewHandler(authSvc, userSvc, quotaSvc, sessions)

	// Expert chat
	chatRepo := chats.NewRepository(pool)
	chatSvc := chats.NewService(chatRepo, llmClient, quotaSvc, calc, sessions)
	chatHandler := chats.NewHandler(chatSvc)

	// Interview prep
	interviewSvc := interview.NewService(llmClient, quotaSvc, calc, sessions)
	interviewHandler := interview.NewHandler(interviewSvc)

	// Images
	imageSvc := images.NewService(llmClient, quotaSvc, calc, sessions)
	imageHandler := images.NewHandler(imageSvc)

	// Usage
	usageHandler := usage.NewHandler(quotaSvc, sessions)

	// 20 auth attempts per IP per minute
	authLimiter := mw.NewRateLimiter(redisClient, 20, 60)

	// Router
	router := api.NewRouter(pool, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		SendChatMessage: chatHandler.SendMessage,
		ListChats:       chatHandler.List,
		GetChat:         chatHandler.Get,
		DeleteChat:      chatHandler.Delete,

		GenerateQuestions:      interviewHandler.GenerateQuestions,
		GenerateCodingQuestion: interviewHandler.GenerateCodingQuestion,
		EvaluateSolution:       interviewHandler.EvaluateSolution,

		GenerateImage: imageHandler.Generate,
		EditImage:     imageHandler.Edit,

		GetUsage: usageHandler.Get,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/lionwox/blogging-platform-api/internal/config"
	"github.com/lionwox/blogging-platform-api/internal/db"
	"github.com/lionwox/blogging-platform-api/internal/http/handler"
	"github.com/lionwox/blogging-platform-api/internal/http/middleware"
	"github.com/lionwox/blogging-platform-api/internal/http/router"
	"github.com/lionwox/blogging-platform-api/internal/observability"
	"github.com/lionwox/blogging-platform-api/internal/repository"
	"github.com/lionwox/blogging-platform-api/internal/security"
	"github.com/lionwox/blogging-platform-api/internal/service"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *gorm.DB
	Server        *http.Server
	Observability *observability.Runtime
}

// New wires every component explicitly: repositories over the database
// handle, services over repositories, handlers over services. No
// framework-resolved dependencies.
func New(cfg *config.Config, logger *slog.Logger, gdb *gorm.DB, runtime *observability.Runtime) *App {
	users := repository.NewUserRepository(gdb)
	tokens := repository.NewRefreshTokenRepository(gdb)
	posts := repository.NewPostRepository(gdb)
	votes := repository.NewVoteRepository(gdb)

	jwtMgr := security.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	authSvc := service.NewAuthService(users, tokens, jwtMgr, config.RefreshTokenTTL)
	userSvc := service.NewUserService(users)
	postSvc := service.NewPostService(posts)
	voteSvc := service.NewVoteService(votes, posts)

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = middleware.NewRedisFixedWindowLimiter(client)
	} else {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	loginLimiter := middleware.NewRateLimiter(limiter, cfg.LoginRateLimitRPM, time.Minute, middleware.FailOpen, "login")

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		UserHandler:      handler.NewUserHandler(userSvc),
		PostHandler:      handler.NewPostHandler(postSvc),
		VoteHandler:      handler.NewVoteHandler(voteSvc),
		JWTManager:       jwtMgr,
		PrincipalLoader:  userSvc,
		LoginRateLimiter: loginLimiter.Middleware(),
		ReadinessCheck: func(ctx context.Context) error {
			return db.Ping(ctx, gdb)
		},
		EnableOTelHTTP: cfg.OTELTracingEnabled,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{Config: cfg, Logger: logger, DB: gdb, Server: server, Observability: runtime}
}

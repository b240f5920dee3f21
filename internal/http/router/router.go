package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lionwox/blogging-platform-api/internal/http/handler"
	"github.com/lionwox/blogging-platform-api/internal/http/middleware"
	"github.com/lionwox/blogging-platform-api/internal/http/response"
	"github.com/lionwox/blogging-platform-api/internal/security"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	PostHandler      *handler.PostHandler
	VoteHandler      *handler.VoteHandler
	JWTManager       *security.JWTManager
	PrincipalLoader  middleware.PrincipalLoader
	LoginRateLimiter func(http.Handler) http.Handler
	ReadinessCheck   func(ctx context.Context) error
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)

	authn := middleware.Authenticator(dep.JWTManager, dep.PrincipalLoader)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.ReadinessCheck != nil {
			if err := dep.ReadinessCheck(r.Context()); err != nil {
				response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", nil)
				return
			}
		}
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
	})

	if dep.LoginRateLimiter != nil {
		r.With(dep.LoginRateLimiter).Post("/login", dep.AuthHandler.Login)
	} else {
		r.Post("/login", dep.AuthHandler.Login)
	}
	r.Post("/refresh", dep.AuthHandler.Refresh)
	r.Post("/logout", dep.AuthHandler.Logout)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", dep.UserHandler.Create)
		r.With(authn).Get("/me", dep.UserHandler.Me)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", dep.PostHandler.List)
		r.Get("/{id}", dep.PostHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/", dep.PostHandler.Create)
			r.Put("/{id}", dep.PostHandler.Update)
			r.Delete("/{id}", dep.PostHandler.Delete)
		})
	})

	r.With(authn).Post("/votes", dep.VoteHandler.Vote)

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

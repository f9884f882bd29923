package api

import (
	"net/http"
	"time"

	"quickhacker/internal/api/handler"
	"quickhacker/internal/api/middleware"
	"quickhacker/internal/app/service"
	"quickhacker/internal/common"
	"quickhacker/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

type Services struct {
	Auth         *service.AuthService
	OAuth        *service.OAuthService
	Users        *service.UserService
	Teams        *service.TeamService
	Registration *service.RegistrationService
	Problems     *service.ProblemService
	Submissions  *service.SubmissionService
	Reviews      *service.ReviewService
}

type Options struct {
	AllowedOrigins []string
	AppURL         string
	TokenTTL       time.Duration
	// AuthLimiter throttles login and registration; nil disables throttling.
	AuthLimiter middleware.Limiter
}

func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Tokens come from "Authorization: Bearer T" or the "token" cookie.
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader, middleware.TokenFromCookie("token")))
	r.Use(middleware.ResolveUser(svc.Auth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "API endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(svc.Auth, svc.OAuth, opts.AppURL, opts.TokenTTL, opts.AuthLimiter)
		api.Route("/auth", authHandler.RegisterRoutes)

		api.Route("/users", handler.NewUserHandler(svc.Users).RegisterRoutes)
		api.Route("/teams", handler.NewTeamHandler(svc.Teams).RegisterRoutes)
		handler.NewRegistrationHandler(svc.Registration, opts.AuthLimiter).RegisterRoutes(api)
		api.Route("/problems", handler.NewProblemHandler(svc.Problems).RegisterRoutes)
		api.Route("/submissions", handler.NewSubmissionHandler(svc.Submissions, svc.Reviews).RegisterRoutes)
		api.Route("/reviews", handler.NewReviewHandler(svc.Reviews).RegisterRoutes)
	})

	return r
}

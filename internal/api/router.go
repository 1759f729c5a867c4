package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/points-backend/internal/api/handlers"
	"github.com/baharkarakas/points-backend/internal/auth"
	"github.com/baharkarakas/points-backend/internal/config"
	"github.com/baharkarakas/points-backend/internal/metrics"
	"github.com/baharkarakas/points-backend/internal/middleware"
	"github.com/baharkarakas/points-backend/internal/services"
)

type RouterDeps struct {
	Cfg         config.Config
	TM          *auth.TokenManager
	UserSvc     *services.UserService
	BalanceSvc  *services.BalanceService
	TransferSvc *services.TransferService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.TM, d.UserSvc)
	userH := handlers.NewUserHandler(d.UserSvc, d.BalanceSvc)
	transferH := handlers.NewTransferHandler(d.TransferSvc)
	am := middleware.NewAuthMiddleware(d.TM)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(am.Auth)

			// ---------- users ----------
			r.Get("/users/me", userH.Me)
			r.Get("/balances/current", userH.Balance)

			// ---------- transfers ----------
			r.Route("/transfers", func(r chi.Router) {
				r.With(middleware.RequireRight(middleware.RightTransferPoints)).Post("/", transferH.Create)
				r.With(middleware.RequireRight(middleware.RightTransferPoints)).Post("/{id}/confirm", transferH.Confirm)
				r.With(middleware.RequireRight(middleware.RightViewTransfers)).Get("/{id}", transferH.Get)
				r.With(middleware.RequireRight(middleware.RightViewTransfers)).Get("/", transferH.List)
			})
		})
	})

	return r
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/FACorreiaa/pesa-insights/pkg/interceptors"
)

// RouterConfig wires the statement routes.
type RouterConfig struct {
	Handler        *StatementHandler
	UploadLimiter  *interceptors.RateLimiter
	AdminToken     string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(interceptors.Recoverer(cfg.Logger))
	r.Use(interceptors.Logger(cfg.Logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			interceptors.UserIDHeader,
			interceptors.AdminTokenHeader,
		},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           3600,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(interceptors.RequireUser)

			upload := r.With()
			if cfg.UploadLimiter != nil {
				upload = r.With(cfg.UploadLimiter.Middleware)
			}
			upload.Post("/statements", h.Upload)

			r.Get("/statements", h.List)
			r.Get("/statements/{id}", h.Get)
			r.Delete("/statements/{id}", h.Delete)
			r.Get("/statements/{id}/transactions", h.SearchTransactions)
			r.Get("/statements/{id}/export", h.Export)
			r.Get("/insights", h.Insights)
		})

		r.With(interceptors.RequireAdminToken(cfg.AdminToken)).Get("/admin/statements", h.AdminList)
	})

	return r
}

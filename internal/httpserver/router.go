package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrcore/internal/auth"
	"hrcore/internal/employees"
)

func NewRouter(
	logger *slog.Logger,
	tokens *auth.TokenIssuer,
	authSvc *auth.Service,
	employeeStore employees.EmployeeStore,
) http.Handler {
	r := chi.NewRouter()
	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	authHandler := &auth.Handler{Service: authSvc, Logger: logger}
	employeeHandler := &employees.Handler{Store: employeeStore, Logger: logger}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/me", authHandler.Me)

		r.Route("/employees", func(r chi.Router) {
			r.Use(auth.Middleware(tokens))
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Get("/{id}", employeeHandler.Get)
			r.Put("/{id}", employeeHandler.Update)
			r.Delete("/{id}", employeeHandler.Delete)
		})
	})

	// CORS wrapper (simple, for local UI/tools).
	return withCORS(r)
}

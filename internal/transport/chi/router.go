package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mqttguard/internal/metrics"
)

// NewRouter builds the public router with the standard middleware stack.
func NewRouter(s *Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	s.Routes(r)
	return r
}

// NewAdminRouter builds the router for the admin port.
func NewAdminRouter(s *Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	s.AdminRoutes(r)
	return r
}

package handler

import (
	"net/http"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/metrics"
	"github.com/Dan9191/property-insights/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every route of the API
func NewRouter(h *Handler, cfg *config.Config, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(log), metrics.Middleware)
	protect := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(cfg)(fn)
	}

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	// The calculator is public and also served without the /api prefix
	for _, m := range []*mux.Router{api.PathPrefix("/mortgage").Subrouter(), r.PathPrefix("/mortgage").Subrouter()} {
		m.HandleFunc("/calculate", h.CalculateMortgage).Methods(http.MethodPost)
		m.HandleFunc("/compare", h.CompareMortgages).Methods(http.MethodPost)
		m.HandleFunc("/reference-rate", h.ReferenceRate).Methods(http.MethodGet)
		m.Handle("/share", protect(h.ShareMortgage)).Methods(http.MethodPost)
	}

	// Protected routes
	api.Handle("/auth/me", protect(h.Me)).Methods(http.MethodGet)
	api.Handle("/properties", protect(h.ListProperties)).Methods(http.MethodGet)
	api.Handle("/properties/add", protect(h.CreateProperty)).Methods(http.MethodPost)
	api.Handle("/properties/{id}", protect(h.GetProperty)).Methods(http.MethodGet)
	api.Handle("/properties/{id}", protect(h.DeleteProperty)).Methods(http.MethodDelete)
	api.Handle("/properties/{id}/mortgage", protect(h.PropertyMortgage)).Methods(http.MethodPost)
	api.Handle("/compare", protect(h.CompareProperties)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

package internal

import (
	"database/sql"
	"net/http"

	"inventory-api/internal/auth"
	"inventory-api/internal/config"
	"inventory-api/internal/handlers"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	DB       *sql.DB
	Router   *chi.Mux
	Verifier auth.Verifier
	Metrics  *Metrics
}

// NewServer wires the router. The token verifier is injected so tests and
// development can swap the identity provider for a local one.
func NewServer(db *sql.DB, verifier auth.Verifier, cfg *config.Config) *Server {
	s := &Server{
		DB:       db,
		Router:   chi.NewRouter(),
		Verifier: verifier,
	}

	// Middleware must be registered before any route.
	if cfg.MetricsEnabled {
		s.Metrics = NewMetrics()
		s.Router.Use(s.Metrics.Middleware())
	}

	// Public probes (no auth)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	if s.Metrics != nil {
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Route("/api", func(api chi.Router) {
		// Read endpoints stay public
		api.Get("/items", s.listItems)
		api.Get("/items/search", s.searchItems)

		// Mutating endpoints require a verified bearer token
		api.Group(func(protected chi.Router) {
			protected.Use(auth.RequireAuth(s.Verifier))

			protected.Post("/items", s.createItem)
			protected.Put("/items/{id}", s.updateItem)
			protected.Delete("/items/{id}", s.deleteItem)

			importsHandler := handlers.NewImportsHandler(s.DB)
			protected.Post("/items/upload", importsHandler.UploadExcel)
		})
	})

	return s
}

// Close releases the server's database pool.
func (s *Server) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

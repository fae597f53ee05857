package router

import (
	"bakerybot/internal/handler"
	"bakerybot/internal/logger"
	"bakerybot/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Logger           *logger.Logger
	Handler          *handler.Handler
	MessageHandler   *handler.MessageHandler
	InventoryHandler *handler.InventoryHandler
	PendingHandler   *handler.PendingHandler
	AdminHandler     *handler.AdminHandler
	AllowedOrigins   []string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.MessageHandler != nil {
			r.Post("/messages", cfg.MessageHandler.PostMessage)
		}

		if cfg.InventoryHandler != nil {
			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.GetSnapshot)
				r.Get("/report", cfg.InventoryHandler.GetReport)
				r.Get("/predictions", cfg.InventoryHandler.GetPredictions)
				r.Get("/history", cfg.InventoryHandler.GetHistory)
			})
		}

		if cfg.PendingHandler != nil {
			r.Route("/clarifications/{requester_id}", func(r chi.Router) {
				r.Get("/", cfg.PendingHandler.GetClarification)
				r.Delete("/", cfg.PendingHandler.DeleteClarification)
			})
			r.Route("/reminders/due", func(r chi.Router) {
				r.Get("/", cfg.PendingHandler.GetDueReminders)
				r.Post("/resolve", cfg.PendingHandler.ResolveDueReminders)
			})
			r.Post("/reminders/{id}/resolve", cfg.PendingHandler.ResolveReminder)
		}

		if cfg.AdminHandler != nil {
			r.Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	})

	return r
}

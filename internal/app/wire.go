package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surehub/platform/internal/balance"
	"github.com/surehub/platform/internal/guard"
	"github.com/surehub/platform/internal/handler"
	"github.com/surehub/platform/internal/lifecycle"
	"github.com/surehub/platform/internal/repository"
	"github.com/surehub/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool          *pgxpool.Pool
	Logger        *slog.Logger
	Store         balance.Store
	ProjectionTTL time.Duration
	CORSOrigins   string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	logger := deps.Logger
	store := deps.Store
	if store == nil {
		store = balance.NewInMemoryStore()
	}

	// Repositories
	bookmakerRepo := repository.NewBookmakerRepository()
	bonusRepo := repository.NewBonusRepository()
	templateRepo := repository.NewTemplateRepository()
	operationRepo := repository.NewOperationRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Lifecycle engine
	engine := lifecycle.NewEngine(bookmakerRepo, bonusRepo, templateRepo, operationRepo, outboxRepo)

	// Services
	bonusSvc := service.NewBonusService(pool, engine, store, logger)
	insightsSvc := service.NewInsightsService(pool, bookmakerRepo, bonusRepo, store, deps.ProjectionTTL, logger)

	// Handlers
	bonusHandler := handler.NewBonusHandler(bonusRepo, bonusSvc, pool)
	bookmakerHandler := handler.NewBookmakerHandler(bookmakerRepo, insightsSvc, pool)
	analyticsHandler := handler.NewAnalyticsHandler(insightsSvc)
	templateHandler := handler.NewTemplateHandler(templateRepo, pool)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigins))
	r.Use(handler.JSONContentType)
	r.Use(handler.RateLimit(guard.NewRateLimiter(120, time.Minute)))

	r.Get("/health", handler.HealthHandler(pool))

	r.Route("/bonuses", func(r chi.Router) {
		r.Post("/", bonusHandler.Create)
		r.Get("/", bonusHandler.List)
		r.Get("/{id}", bonusHandler.Get)
		r.Put("/{id}", bonusHandler.Edit)
		r.Delete("/{id}", bonusHandler.Delete)
		r.Post("/{id}/confirm-credit", bonusHandler.ConfirmCredit)
		r.Post("/{id}/finalize", bonusHandler.Finalize)
		r.Post("/{id}/correct-status", bonusHandler.CorrectStatus)
		r.Patch("/{id}/reason", bonusHandler.EditReason)
	})

	r.Route("/bookmakers", func(r chi.Router) {
		r.Post("/", bookmakerHandler.Create)
		r.Get("/{id}", bookmakerHandler.Get)
		r.Get("/{id}/balance", bookmakerHandler.OperableBalance)
	})

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/bookmakers", bookmakerHandler.ListByProject)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/scoreboard", analyticsHandler.Scoreboard)
			r.Get("/alerts", analyticsHandler.Alerts)
		})
	})

	r.Route("/catalogs/{catalogID}", func(r chi.Router) {
		r.Get("/templates", templateHandler.ListByCatalog)
	})
	r.Get("/templates/{id}", templateHandler.Get)

	return r
}

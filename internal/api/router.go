package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dfarias/chaperone/internal/api/handlers"
	mw "github.com/dfarias/chaperone/internal/api/middleware"
	"github.com/dfarias/chaperone/internal/buildconfig"
	"github.com/dfarias/chaperone/internal/config"
	"github.com/dfarias/chaperone/internal/console"
	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/messenger"
	"github.com/dfarias/chaperone/internal/notify"
	"github.com/dfarias/chaperone/internal/service"
	"github.com/dfarias/chaperone/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Agent role names registered in the transfer directory.
const (
	AgentConversational = "conversational"
	AgentScheduler      = "scheduler"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Reminder     *service.ReminderService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires stores, services and handlers. rdb may be nil, in which case
// detector sessions live in process memory.
func NewApp(db *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) *App {
	// Stores
	conversationStore := store.NewConversationStore(db)
	counterpartyStore := store.NewCounterpartyStore(db)
	handoffStore := store.NewHandoffStore(db)
	auditStore := store.NewAuditStore(db)

	var sessionStore domain.SessionStore
	if rdb != nil {
		sessionStore = store.NewRedisSessionStore(rdb, config.SessionTTL())
		logger.Info("session store initialized", zap.String("backend", "redis"))
	} else {
		sessionStore = store.NewMemorySessionStore()
		logger.Info("session store initialized", zap.String("backend", "memory"))
	}

	// External clients via provider factory
	sender, err := messenger.NewSender(config.MessengerProvider(), config.MessengerGatewayURL(), config.MessengerGatewayToken())
	if err != nil {
		logger.Warn("messenger initialization failed, falling back to mock",
			zap.String("provider", config.MessengerProvider()), zap.Error(err))
		sender = messenger.NewMockSender()
	} else {
		logger.Info("messenger initialized", zap.String("provider", config.MessengerProvider()))
	}

	var notifier domain.OperatorNotifier = notify.NopNotifier{}
	if url := config.NotifierWebhookURL(); url != "" {
		notifier = notify.NewWebhookNotifier(url)
		logger.Info("operator notifier initialized")
	}

	var mirror domain.ConsoleMirror = console.NopMirror{}
	if url := config.ConsoleURL(); url != "" {
		mirror = console.NewClient(url, config.ConsoleToken())
		logger.Info("console mirror initialized")
	}

	// Agent directory for transfers
	registry := service.NewAgentRegistry()
	registry.Register(AgentConversational, []domain.AgentCapability{
		{Name: "negotiate", Description: "negotiate shift terms over text"},
		{Name: "answer", Description: "answer questions about open shifts"},
	})
	registry.Register(AgentScheduler, []domain.AgentCapability{
		{Name: "book", Description: "confirm and book agreed shifts"},
	})

	// Services
	emitter := service.NewAuditEmitter(auditStore, logger)
	conversationSvc := service.NewConversationService(conversationStore, logger)
	confrontationSvc := service.NewConfrontationService()
	contradictionSvc := service.NewContradictionService(sessionStore, logger)
	loopSvc := service.NewLoopService(sessionStore, logger)
	uncertaintySvc := service.NewUncertaintyService()
	personaSvc := service.NewPersonaService()
	handoffSvc := service.NewHandoffService(conversationStore, counterpartyStore, handoffStore,
		sessionStore, sender, emitter, notifier, mirror, registry, logger)
	gateSvc := service.NewGateService(conversationStore, sessionStore, conversationSvc,
		confrontationSvc, contradictionSvc, loopSvc, uncertaintySvc, personaSvc,
		handoffSvc, emitter, logger)
	reminderSvc := service.NewReminderService(handoffStore, conversationStore, notifier, logger)
	reminderSvc.SetInterval(config.ReminderInterval())
	reminderSvc.SetMaxAge(config.ReminderMaxAge())

	// Handlers
	counterpartyHandler := handlers.NewCounterpartyHandler(counterpartyStore)
	conversationHandler := handlers.NewConversationHandler(conversationSvc, gateSvc)
	screenHandler := handlers.NewScreenHandler(gateSvc)
	handoffHandler := handlers.NewHandoffHandler(handoffSvc, handoffStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Reminder:  reminderSvc,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db, rdb))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/counterparties", func(r chi.Router) {
			r.Post("/", counterpartyHandler.Create)
			r.Get("/{id}", counterpartyHandler.GetByID)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.GetByID)
				r.Post("/pause", conversationHandler.Pause)
				r.Post("/resume", conversationHandler.Resume)
				r.Post("/complete", conversationHandler.Complete)
				r.Post("/replies", conversationHandler.RecordReply)
				r.Post("/screen/inbound", screenHandler.Inbound)
				r.Post("/screen/outbound", screenHandler.Outbound)
				r.Post("/handoff", handoffHandler.Initiate)
				r.Post("/handoff/finalize", handoffHandler.Finalize)
			})
		})

		r.Route("/handoffs", func(r chi.Router) {
			r.Get("/pending", handoffHandler.ListPending)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handoffHandler.GetByID)
				r.Post("/resolve", handoffHandler.Resolve)
			})
		})

		r.Post("/transfers", handoffHandler.Transfer)
	})

	return app
}

// NewRouter returns just the chi.Mux for tests and embedding.
func NewRouter(db *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) *chi.Mux {
	return NewApp(db, rdb, logger).Router
}

func healthHandler(db *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		if rdb != nil {
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.ConversationStore = (*store.ConversationStore)(nil)
	_ domain.CounterpartyStore = (*store.CounterpartyStore)(nil)
	_ domain.HandoffStore      = (*store.HandoffStore)(nil)
	_ domain.SessionStore      = (*store.RedisSessionStore)(nil)
	_ domain.SessionStore      = (*store.MemorySessionStore)(nil)
	_ domain.MessageSender     = (*messenger.GatewayClient)(nil)
	_ domain.MessageSender     = (*messenger.MockSender)(nil)
	_ domain.EventEmitter      = (*service.AuditEmitter)(nil)
	_ domain.EventEmitter      = service.NopEmitter{}
	_ domain.OperatorNotifier  = (*notify.WebhookNotifier)(nil)
	_ domain.OperatorNotifier  = (*notify.MockNotifier)(nil)
	_ domain.ConsoleMirror     = (*console.Client)(nil)
	_ domain.ConsoleMirror     = (*console.MockMirror)(nil)
	_ domain.AgentDirectory    = (*service.AgentRegistry)(nil)
)

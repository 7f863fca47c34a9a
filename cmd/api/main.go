package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devvault2026/revampai/internal/agents"
	"github.com/devvault2026/revampai/internal/auth"
	"github.com/devvault2026/revampai/internal/calls"
	"github.com/devvault2026/revampai/internal/events"
	apphttp "github.com/devvault2026/revampai/internal/http"
	"github.com/devvault2026/revampai/internal/http/router"
	"github.com/devvault2026/revampai/internal/inbox"
	"github.com/devvault2026/revampai/internal/leads"
	"github.com/devvault2026/revampai/internal/leads/intel"
	"github.com/devvault2026/revampai/internal/leads/lifecycle"
	"github.com/devvault2026/revampai/internal/outreach"
	"github.com/devvault2026/revampai/internal/scheduler"
	"github.com/devvault2026/revampai/internal/sessions"
	"github.com/devvault2026/revampai/internal/sitestore"
	"github.com/devvault2026/revampai/platform/ai/gemini"
	"github.com/devvault2026/revampai/platform/config"
	"github.com/devvault2026/revampai/platform/db"
	"github.com/devvault2026/revampai/platform/logger"
	"github.com/devvault2026/revampai/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Generative AI gateway. Without an API key every AI-backed operation
	// fails with a configuration error instead of a crash.
	var (
		gateway      intel.Gateway = intel.Disabled{}
		agentTester  agents.Tester
		geminiClient *gemini.Client
	)
	if cfg.IsAIEnabled() {
		geminiClient, err = gemini.NewClient(ctx, gemini.Config{
			APIKey: cfg.GetGeminiAPIKey(),
			Model:  cfg.GetGeminiModel(),
		})
		if err != nil {
			log.Error("failed to initialize gemini client", "error", err)
			panic("failed to initialize gemini client: " + err.Error())
		}
		gateway = intel.NewGeminiGateway(geminiClient, log)
		agentTester = agents.NewPersonaTester(geminiClient)
		log.Info("ai gateway initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; AI features disabled")
	}

	// Site archive (MinIO). Optional: stages succeed without it.
	var (
		archive lifecycle.SiteArchiver
		linker  sitestore.Linker
	)
	if cfg.IsMinIOEnabled() {
		archiver, err := sitestore.NewArchiver(cfg)
		if err != nil {
			log.Error("failed to initialize site archive", "error", err)
			panic("failed to initialize site archive: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure site-pages bucket", 5, 2*time.Second, func() error {
			return archiver.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure site-pages bucket", "error", err)
			panic("failed to ensure site-pages bucket: " + err.Error())
		}
		archive = archiver
		linker = archiver
		log.Info("site archive initialized", "bucket", cfg.GetMinioBucketSitePages())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; site sharing disabled")
	}

	// Task scheduler (asynq). Optional: the in-process watchdog still
	// abandons stale calls without it.
	taskClient := initTaskClient(cfg, log)
	if taskClient != nil {
		defer taskClient.Close()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Shared validator instance for dependency injection
	val := validator.New()

	agentsModule := agents.NewModule(pool, agentTester, val)
	leadsModule := leads.NewModule(pool, gateway, agentsModule.Service(), archive, eventBus, log)
	sessionsModule := sessions.NewModule(pool, eventBus, log)
	authModule := auth.NewModule(cfg, log)

	telephony := calls.NewTwilioGateway(cfg)
	callsModule := calls.NewModule(telephony, leadsModule.Repository(), agentsModule.Service(), cfg, eventBus, log)

	inboxModule := inbox.NewModule(leadsModule.Repository(), eventBus, log)
	outreachModule := outreach.NewModule(
		leadsModule.Repository(),
		outreach.NewSMTPSender(cfg),
		inboxModule.Service(),
		cfg,
		log,
	)
	sitestoreModule := sitestore.NewModule(leadsModule.Repository(), linker, log)

	if taskClient != nil {
		outreachModule.Service().SetDeferrer(taskClient)
	}

	// Pipeline completion triggers the first outreach email automatically.
	if cfg.IsOutreachEnabled() {
		eventBus.Subscribe(events.LeadOutreachReady{}.EventName(), events.HandlerFunc(outreachModule.Service().AutoSend))
	}

	// Belt over the in-process poll deadline: a scheduled watchdog task
	// abandons the call even if this process restarted mid-call.
	if taskClient != nil {
		eventBus.Subscribe(events.CallStarted{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
			started, ok := e.(events.CallStarted)
			if !ok {
				return nil
			}
			return taskClient.ScheduleCallWatchdog(ctx, started.ProviderID, time.Now().Add(11*time.Minute))
		}))
	}

	if err := sessionsModule.Service().EnsureDefault(ctx); err != nil {
		log.Error("failed to seed default session", "error", err)
		panic("failed to seed default session: " + err.Error())
	}

	// IMAP reply watcher.
	var watcher *inbox.Watcher
	if cfg.IsInboxEnabled() {
		watcher = inbox.NewWatcher(cfg, inboxModule.Service(), log)
		go watcher.Run(ctx)
		log.Info("inbox watcher started", "host", cfg.GetIMAPHost())
	} else {
		log.Warn("IMAP_HOST not configured; reply tracking disabled")
	}

	// Task worker runs in-process: call state lives in this process's
	// memory, so the watchdog must fire here to abandon a stale call.
	if taskClient != nil {
		var syncer scheduler.InboxSyncer
		if watcher != nil {
			syncer = watcher
		}
		worker, err := scheduler.NewWorker(cfg, callsModule.Controller(), outreachTaskSender{outreachModule.Service()}, syncer, log)
		if err != nil {
			log.Error("failed to initialize task worker", "error", err)
		} else {
			go worker.Run(ctx)
			log.Info("task worker started")
		}
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			sessionsModule,
			agentsModule,
			leadsModule,
			callsModule,
			inboxModule,
			outreachModule,
			sitestoreModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// outreachTaskSender adapts the outreach service to the worker's
// payload-oriented send interface.
type outreachTaskSender struct {
	service *outreach.Service
}

func (s outreachTaskSender) Send(ctx context.Context, leadID uuid.UUID) error {
	_, err := s.service.Send(ctx, leadID)
	return err
}

func initTaskClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; deferred tasks disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task scheduler client", "error", err)
		return nil
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/interview-coach/internal/config"
	"github.com/fadilmartias/interview-coach/internal/domain/fiber/handler"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/middleware"
	"github.com/fadilmartias/interview-coach/internal/pipeline"
	"github.com/fadilmartias/interview-coach/internal/repository"
	"github.com/fadilmartias/interview-coach/internal/service"
	"github.com/fadilmartias/interview-coach/internal/session"
	"github.com/fadilmartias/interview-coach/internal/usecase"
	"github.com/fadilmartias/interview-coach/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("port", "", "listen address, e.g. :8080 (overrides APP_PORT)")
	cmd.Flags().Bool("json", false, "log as JSON (overrides LOG_JSON)")
	cmd.Flags().Bool("debug", false, "enable debug logs (overrides LOG_DEBUG)")
	cmd.Flags().String("mode", "", "pipeline mode: full or mock (overrides PIPELINE_MODE)")
}

func bindServeFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"APP_PORT":      "port",
		"LOG_JSON":      "json",
		"LOG_DEBUG":     "debug",
		"PIPELINE_MODE": "mode",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := config.BindFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := bindServeFlags(cmd); err != nil {
		return err
	}

	appConfig := config.LoadAppConfig()
	sessionConfig := config.LoadSessionConfig()

	log, err := logger.New(appConfig.LogJSON, appConfig.LogDebug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(appConfig.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	db, err := ConnectDB()
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	gemini, err := service.NewGeminiService(ctx, log)
	if err != nil {
		return err
	}

	sessions, err := newSessionStore(ctx, sessionConfig, log)
	if err != nil {
		return err
	}
	go session.RunSweeper(ctx, appConfig.UploadDir, sessionConfig.TTL, 10*time.Minute, log)

	uc, err := usecase.NewInterviewUsecase(usecase.InterviewDeps{
		Generator:  gemini,
		Search:     service.NewFirecrawlService(log),
		Extractor:  util.NewDocumentExtractor(log),
		Questions:  repository.NewQuestionRepository(db),
		QueryCache: repository.NewQueryCacheRepository(db),
		Sessions:   sessions,
		Pipeline:   config.LoadPipelineConfig(),
		Logger:     log,
	})
	if err != nil {
		return err
	}

	app := newApp(appConfig)
	handler.NewInterviewHandler(uc, appConfig.UploadDir, log).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debug("runtime stats", zap.Int("goroutines", runtime.NumGoroutine()))
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running",
			zap.String("addr", appConfig.Port),
			zap.String("env", appConfig.Env),
			zap.String("pipeline_mode", config.LoadPipelineConfig().Mode),
		)
		errCh <- app.Listen(appConfig.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func newApp(appConfig *config.AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		BodyLimit:    6 * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler,
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	return app
}

// newSessionStore picks redis when REDIS_URL is set, otherwise an in-memory
// store whose evictions also remove the session's uploads.
func newSessionStore(ctx context.Context, cfg *config.SessionConfig, log *zap.Logger) (session.Store, error) {
	if cfg.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("using redis session store", zap.Duration("ttl", cfg.TTL))
		return session.NewRedisStore(client, cfg.TTL), nil
	}

	store := session.NewMemoryStore(cfg.TTL, cfg.MaxEntries, func(id string, state pipeline.State) {
		if state.FilePath == "" {
			return
		}
		if err := os.RemoveAll(state.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("remove evicted session uploads failed", zap.String("session_id", id), zap.Error(err))
		}
	}, log)
	go store.RunJanitor(ctx, time.Minute)
	log.Info("using in-memory session store", zap.Duration("ttl", cfg.TTL), zap.Int("max_entries", cfg.MaxEntries))
	return store, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/funnelquiz/internal/api"
	"github.com/verte-zerg/funnelquiz/internal/config"
	"github.com/verte-zerg/funnelquiz/internal/logger"
	"github.com/verte-zerg/funnelquiz/internal/quiz"
	"github.com/verte-zerg/funnelquiz/internal/store"
	"github.com/verte-zerg/funnelquiz/internal/tracker"
)

const statusInterval = time.Minute

var (
	serveAddr           string
	serveDBPath         string
	serveVariant        string
	serveAMQPURL        string
	serveExchange       string
	serveAllowedOrigins []string
	serveSessionTTL     time.Duration
	serveMaxSessions    int
	serveEnvFile        string
	serveLogMode        string
	serveQueueSize      int
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz and admin metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.Flags().StringVar(&serveVariant, "variant", quiz.DefaultVariant, "quiz variant")
	cmd.Flags().StringVar(&serveAMQPURL, "amqp-url", "", "publish funnel events to this broker")
	cmd.Flags().StringVar(&serveExchange, "exchange", defaultExchange, "topic exchange for funnel events")
	cmd.Flags().StringSliceVar(&serveAllowedOrigins, "allowed-origin", nil, "CORS origin allowed to call the API (repeatable, default any)")
	cmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", defaultSessionTTL, "idle time before a session is forgotten")
	cmd.Flags().IntVar(&serveMaxSessions, "max-sessions", defaultMaxSessions, "maximum live sessions kept in memory")
	cmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "dotenv file loaded before reading FUNNELQUIZ_* variables")
	cmd.Flags().StringVar(&serveLogMode, "log-mode", defaultLogMode, "log encoder: dev or prod")
	cmd.Flags().IntVar(&serveQueueSize, "queue-size", 0, "tracking queue capacity (0 uses the default)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadDotEnv(serveEnvFile)
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg); err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "db", &serveDBPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "variant", &serveVariant, fileCfg.Quiz.Variant)
	applyStringConfig(cmd, "amqp-url", &serveAMQPURL, fileCfg.Events.AMQPURL)
	applyStringConfig(cmd, "exchange", &serveExchange, fileCfg.Events.Exchange)
	applyStringSliceConfig(cmd, "allowed-origin", &serveAllowedOrigins, fileCfg.Serve.AllowedOrigins)
	applyIntConfig(cmd, "max-sessions", &serveMaxSessions, fileCfg.Serve.MaxSessions)
	applyStringConfig(cmd, "log-mode", &serveLogMode, fileCfg.Log.Mode)
	if err := applyDurationConfig(cmd, "session-ttl", &serveSessionTTL, fileCfg.Serve.SessionTTL); err != nil {
		return err
	}
	if serveMaxSessions <= 0 {
		return fmt.Errorf("--max-sessions must be > 0")
	}
	if serveSessionTTL <= 0 {
		return fmt.Errorf("--session-ttl must be > 0")
	}

	logOpts := logger.Options{Mode: serveLogMode}
	if fileCfg.Log.File != nil {
		logOpts.File = *fileCfg.Log.File
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return err
	}
	defer log.Sync()
	if loaded {
		log.Debug("loaded env file", "path", serveEnvFile)
	}

	content, err := quiz.ResolveVariant(serveVariant, config.DefaultVariantDir())
	if err != nil {
		return fmt.Errorf("failed to load variant: %w", err)
	}

	st, err := store.Open(serveDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error("failed to close db", "error", cerr)
		}
	}()

	recorders, closeRecorders, err := openRecorders(st, serveAMQPURL, serveExchange, log)
	if err != nil {
		return err
	}
	defer closeRecorders()
	tr := tracker.New(log, tracker.Options{QueueSize: serveQueueSize}, recorders...)
	defer closeTracker(tr, log)

	if serveLogMode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	registry := api.NewRegistry(serveMaxSessions, serveSessionTTL)
	router := api.NewRouter(api.RouterConfig{
		Sessions:       api.NewSessionHandler(registry, content, tr, log),
		Admin:          api.NewAdminHandler(st),
		Registry:       registry,
		Pinger:         st,
		Log:            log,
		AllowedOrigins: serveAllowedOrigins,
	})
	server := api.NewServer(serveAddr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", serveAddr, "variant", content.Name, "db", serveDBPath)
		return server.Run(gctx)
	})
	g.Go(func() error {
		reportStatus(gctx, log, registry, tr)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info("shutting down")
	return nil
}

// reportStatus logs live session and dropped event counts until ctx is done.
func reportStatus(ctx context.Context, log *logger.Logger, registry *api.Registry, tr *tracker.Tracker) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info("status", "sessions", registry.Len(), "dropped_events", tr.Dropped())
		}
	}
}

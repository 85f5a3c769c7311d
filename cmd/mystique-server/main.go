// mystique-server is the Madame Mystique fortune-telling API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mystique/internal/config"
	mysterrors "mystique/internal/errors"
	"mystique/internal/fortune"
	"mystique/internal/llm"
	"mystique/internal/logging"
	"mystique/internal/observability"
	"mystique/internal/server"
	"mystique/internal/session"
)

var (
	cyan = color.New(color.FgCyan).SprintFunc()
	gray = color.New(color.FgHiBlack).SprintFunc()
)

func main() {
	var configFile string
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "mystique-server",
		Short: "Madame Mystique fortune-telling API server",
		Long: "Serves mystical readings over HTTP: tarot, crystal ball, palm,\n" +
			"astrology, runes, and coffee cup readings, in English and Turkish.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, debug)
		},
	}
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to config file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and gin debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile string, debug bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if debug {
		logging.SetLevel(logging.DEBUG)
	} else {
		logging.SetLevel(logging.ParseLevel(cfg.Log.Level))
	}
	logger := logging.NewComponentLogger("Server")

	fmt.Printf("%s %s\n", cyan("Madame Mystique"), gray("awaits your questions"))
	fmt.Printf("%s\n", gray(fmt.Sprintf("model %s via %s", cfg.Provider.Model, cfg.Provider.BaseURL)))

	metrics, err := observability.NewMetricsCollector(observability.MetricsConfig{
		Enabled: cfg.Metrics.Enabled,
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	headers := map[string]string{"X-Title": "Madame Mystique"}
	if len(cfg.Server.AllowedOrigins) > 0 && cfg.Server.AllowedOrigins[0] != "*" {
		// OpenRouter attributes traffic by referer.
		headers["HTTP-Referer"] = cfg.Server.AllowedOrigins[0]
	}

	provider, err := llm.NewOpenAIClient(cfg.Provider.Model, llm.Config{
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Headers: headers,
		Timeout: int(cfg.Provider.Timeout / time.Second),
	})
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	retryConfig := mysterrors.DefaultRetryConfig()
	if cfg.Provider.MaxRetries > 0 {
		retryConfig.MaxAttempts = cfg.Provider.MaxRetries
	}
	provider = llm.NewRetryClient(provider, retryConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(session.Options{
		MaxHistory:    cfg.Session.MaxHistory,
		MaxInactive:   cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
		Logger:        logging.NewComponentLogger("SessionStore"),
		OnEvict: func(evicted int) {
			metrics.DecrementActiveSessions(context.Background(), evicted)
		},
	})
	store.Start(ctx)
	defer store.Stop()

	svc, err := fortune.NewService(fortune.Options{
		Provider:       provider,
		Store:          store,
		Metrics:        metrics,
		Logger:         logging.NewComponentLogger("Fortune"),
		MaxTokens:      cfg.Fortune.MaxTokens,
		ImageCacheSize: cfg.Fortune.ImageCacheSize,
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Config:  cfg.Server,
		Fortune: svc,
		Store:   store,
		Metrics: metrics,
		Logger:  logger,
		Debug:   debug,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

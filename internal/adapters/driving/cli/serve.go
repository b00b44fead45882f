package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prdocs/internal/adapters/driven/llm/groq"
	"github.com/custodia-labs/prdocs/internal/adapters/driven/llm/nvidia"
	"github.com/custodia-labs/prdocs/internal/adapters/driven/oauth"
	"github.com/custodia-labs/prdocs/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/prdocs/internal/config"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
	"github.com/custodia-labs/prdocs/internal/core/services"
)

var serveFlags struct {
	configPath string
	addr       string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.configPath, "config", "c", "prdocs.toml",
		"path to the TOML config file")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "",
		"listen address override")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveFlags.configPath)
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.Addr = serveFlags.addr
	}

	setupLogging(cfg.Production)

	primary, err := groq.NewService(groq.Config{APIKey: cfg.GroqAPIKey})
	if err != nil {
		return fmt.Errorf("configure primary provider: %w", err)
	}

	var fallback driven.TextGenerator
	if cfg.NvidiaAPIKey != "" {
		nv, err := nvidia.NewService(nvidia.Config{APIKey: cfg.NvidiaAPIKey})
		if err != nil {
			return fmt.Errorf("configure fallback provider: %w", err)
		}
		fallback = nv
	} else {
		slog.Warn("no fallback provider configured, rate limits will surface directly")
	}

	refresher := oauth.NewGoogleRefresher(cfg.GoogleClientID, cfg.GoogleClientSecret)
	summary := services.NewSummaryService(primary, fallback)
	server := httpapi.New(cfg, refresher, summary)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// setupLogging configures the process-wide logger. Production gets JSON
// lines; development gets the readable text handler.
func setupLogging(production bool) {
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

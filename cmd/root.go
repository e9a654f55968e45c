// Package cmd defines and implements the CLI commands for the image
// pipeline executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/api"
	"github.com/campusmatch/image-pipeline/internal/app"
	"github.com/campusmatch/image-pipeline/internal/config"
	"github.com/campusmatch/image-pipeline/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface the commands use. Keeping it an
// interface lets tests swap in a stub via the newApp factory.
type App interface {
	Close()
	Logger() *zap.Logger
	Config() config.Config
	Kinds() map[string]api.Kind
}

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp func(ctx context.Context) (App, error) = func(ctx context.Context) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, logger)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imagepipe",
		Short: "Extracts and scores primary images for institutions and scholarships.",
		Long: `imagepipe crawls entity websites, scores the candidate images it finds,
standardizes the winners, and publishes them to object storage. It can run
as a one-shot batch or serve an HTTP API for on-demand extraction.`,

		// Build the application after flags are parsed but before the
		// subcommand runs, and hand it down through the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, environment variables also work)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExtractCmd())

	return cmd
}

// resolveApp pulls the application container out of the command context.
func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command frame-web runs the framekit API as a local HTTP server.
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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/framekit/internal/api"
	"github.com/fpang/framekit/internal/lambdaboot"
	"github.com/fpang/framekit/internal/logging"
)

var (
	configFlag string
	portFlag   int
	warmFlag   []string
)

var rootCmd = &cobra.Command{
	Use:   "frame-web",
	Short: "HTTP server for frame matching and framed previews",
	Long: `Frame Web serves the framekit API: aspect-ratio matching, frame template
assets with fallback to the default frame, and framed photo previews.

Settings come from an optional TOML file and FRAMEKIT_* environment variables.

Examples:
  frame-web
  frame-web --port 9090
  frame-web --config framekit.toml --warm "Black/Wood/Thin" --warm "Oak/Wood/Thick"`,
	Args: cobra.NoArgs,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to a TOML config file")
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.Flags().StringArrayVar(&warmFlag, "warm", nil, "Preload every ratio of a color/material/thickness selection at startup (repeatable)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	logging.Init()

	rt, err := lambdaboot.Init(cmd.Context(), "frame-web", configFlag)
	if err != nil {
		return err
	}
	port := rt.Config.Server.Port
	if portFlag > 0 {
		port = portFlag
	}
	rt.Startup.CommitHash(commitHash).BuildTime(buildTime).Log()

	selections, err := parseWarm(warmFlag)
	if err != nil {
		return err
	}
	warmCache(rt.Manager, selections)

	handler := api.WithCORS(api.NewHandler(rt.Manager, api.OptionsFromConfig(rt.Config)))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().Int("port", port).Msg("Starting web server")
	fmt.Printf("\n  Frame API: http://localhost:%d/api/health\n\n", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

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

	"candidate-predictor/internal/metrics"
	"candidate-predictor/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP server",
	Long:  `Start an HTTP server exposing prediction, training, survey and Prometheus metrics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := settings.HTTPPort
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	m := metrics.New()
	a, err := openApp(m)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.predictor.Warm(cmd.Context()); err != nil {
		return fmt.Errorf("initialize model: %w", err)
	}
	if n, err := a.store.CountSurveys(); err == nil {
		metrics.NewWrapper(m).SurveysAdd(n)
	}

	srv := server.NewModelServer(a.predictor, server.Options{
		Port:           port,
		RequestTimeout: settings.RequestTimeout,
		Surveys:        a.store,
		Metrics:        m,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	log.Info().Msg("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rcarvalho-pb/storefront-payments/internal/config"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/logging"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/metrics"
	httpapi "github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/http"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the payment HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slogger := newLogger(cfg)
	logger := logging.NewSlogLogger(slogger)

	st, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	counters := &metrics.Counters{}
	bus, err := buildBus(ctx, cfg, counters, logger)
	if err != nil {
		return err
	}

	handler := &httpapi.PaymentHandler{
		Service: newService(cfg, st.Repo, provider, bus, logger),
		Logger:  logger,
		Scheme:  cfg.Redirect.Scheme,
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(handler, counters, slogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", map[string]any{
			"addr":  cfg.Server.Addr,
			"store": cfg.Store.Driver,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

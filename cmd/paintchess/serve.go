package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/builder"
	appcfg "github.com/park285/paint-chess/internal/config"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/internal/transport"
)

func newServeCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket game server",
		Long: `Run the game server. Configuration comes from the environment
(LISTEN_ADDR, DATABASE_URL, REDIS_URL, RESULT_WEBHOOK_URL, ...). Without
DATABASE_URL or REDIS_URL the server keeps accounts in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appcfg.Load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg *appcfg.AppConfig) error {
	deps, err := builder.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	opts := transport.DefaultOptions()
	opts.OriginPatterns = cfg.AllowedOrigins
	opts.Guests = deps.Accounts
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           transport.NewServer(deps.Manager, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obslog.L().Info("http_listen", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	obslog.L().Info("http_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Websocket connections are hijacked, so Shutdown does not wait for them.
	// Closing the manager ends their matches.
	if err := srv.Shutdown(sctx); err != nil {
		obslog.L().Warn("http_shutdown_error", zap.Error(err))
	}
	return nil
}

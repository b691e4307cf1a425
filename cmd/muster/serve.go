package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/musterhq/muster/modules"
	"github.com/musterhq/muster/pkg/application"
	"github.com/musterhq/muster/pkg/configuration"
	"github.com/musterhq/muster/pkg/eventbus"
	"github.com/musterhq/muster/pkg/middleware"
	"github.com/musterhq/muster/pkg/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	conf := configuration.Use()
	logger := conf.Logger()

	poolCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(poolCtx, conf.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterMiddleware(
		middleware.LogRequests(logger),
		middleware.Recover(),
		middleware.ProvidePool(pool),
		middleware.WithTransaction(),
		middleware.ProvideActor(),
	)
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		return err
	}

	srv := server.NewHTTPServer(app)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", conf.SocketAddress()).Info("server listening")
		errCh <- srv.Start(conf.SocketAddress())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tabung/internal/amqp"
	"tabung/internal/cli"
	apphttp "tabung/internal/http"
	"tabung/internal/log"
	"tabung/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger.WithComponent(log.ComponentStorage), cfg.SQLiteDBPath)
	defer repo.Close()

	// Ledger events are optional; without a broker the API works unchanged.
	var extra []services.Option
	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WithComponent(log.ComponentAMQP).Warn("AMQP unavailable, ledger events disabled", log.FieldError, err)
		} else {
			publisher = client
			extra = append(extra, services.WithEvents(client))
		}
	}
	if publisher != nil {
		defer publisher.Close()
	}

	ledger := cli.InitLedger(context.Background(), logger.WithComponent(log.ComponentLedger), cfg, repo, extra...)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		AuthUsername:   cfg.AuthUsername,
		AuthPassword:   cfg.AuthPassword,
		MetricsEnabled: cfg.MetricsEnabled,
		RateLimit:      120,
		Ready:          repo,
		Logger:         logger.WithComponent(log.ComponentHTTP),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tabung server",
			"port", cfg.Port,
			"auth", cfg.AuthEnabled(),
			"events", publisher != nil,
			"bills_policy", cfg.BillsBudgetPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		repo.Close()
		os.Exit(1)
	}
	<-done
	logger.Info("Server stopped gracefully")
}

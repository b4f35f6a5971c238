package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/olegsm/billgate/internal/api"
	"github.com/olegsm/billgate/internal/clients/qiwi"
	"github.com/olegsm/billgate/internal/ledger"
	"github.com/olegsm/billgate/internal/service"
	"github.com/olegsm/billgate/internal/watcher"
	"github.com/olegsm/billgate/pkg/broker"
	"github.com/olegsm/billgate/pkg/config"
	"github.com/olegsm/billgate/pkg/job"
	"github.com/olegsm/billgate/pkg/logger"
)

const ReadTimeout = 3 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	_, err = logger.New(cfg.Logger.Level)
	panicOnErr("create logger", err)

	var bills ledger.Ledger

	if cfg.Redis.Addr != "" {
		r := ledger.NewRedis(cfg.Redis.Addr, cfg.Redis.TTL)
		panicOnErr("ping redis", r.Ping(ctx))

		defer r.Close()

		bills = r
	} else {
		bills = ledger.NewMemory()
	}

	gateway := qiwi.NewClient(cfg.Qiwi)

	var producer service.Producer = broker.Noop{}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Brokers[0] != "" {
		p := broker.NewProducer(slog.Default(), cfg.Kafka.Brokers, cfg.Kafka.BillEventsTopic)
		defer p.Close()

		producer = p
	}

	w := watcher.New(bills, cfg.Watch.MaxWait, cfg.Watch.PollInterval)

	s := service.New(bills, gateway, producer, w)

	runner := job.NewRunner().
		TryRegister(cfg.Sweep.Enabled, "sweep pending bills", cfg.Sweep.Interval, s.SweepPending)
	runner.Start(ctx)

	handler := api.NewHandler(s)
	mw := api.NewMiddleware(cfg.HTTP.APIKeyEnabled, cfg.HTTP.APIKey, cfg.Qiwi.CallbackIPWL)

	router := api.NewRouter(handler, mw)

	// No write timeout: the event stream holds its response open for the
	// whole watch window.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:     router,
		ReadTimeout: ReadTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}
	}()

	slog.InfoContext(ctx, "service started", "port", cfg.HTTP.Port)

	wg.Add(1)

	go func() {
		defer wg.Done()

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		sig := <-ch

		slog.InfoContext(ctx, "got OS signal", "signal", sig.String())

		cancel()
		runner.Stop()

		err = server.Shutdown(context.Background())
		if err != nil {
			slog.ErrorContext(ctx, "server shutdown", "error", err)
		}
	}()

	wg.Wait()
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}

package app

import (
	"bufio"
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tavola-client/internal/api"
	"github.com/xenking/tavola-client/internal/cart"
	"github.com/xenking/tavola-client/internal/order"
	"github.com/xenking/tavola-client/internal/session"
	"github.com/xenking/tavola-client/pkg/httpclient"
	"github.com/xenking/tavola-client/pkg/probe"
)

const userAgent = "tavola-client/1.0"

// Run creates all dependencies and drives the interactive client until the
// input ends or the context is cancelled. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("base_url", cfg.BaseURL))

	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: httpclient.Wrap(
			otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpclient.InjectLogger(lg),
			httpclient.UserAgent(userAgent),
			httpclient.RequestID(),
			httpclient.LogRequests(),
		),
	}

	// Session over durable token storage; pick up any persisted session.
	storage := session.NewFileStorage(cfg.TokenFile)
	store := session.NewStore(cfg.BaseURL, httpClient, storage, lg)
	store.Restore()

	gateway := api.NewClient(cfg.BaseURL, httpClient, store)

	basket := cart.New()
	workflow := order.NewWorkflow(store, basket, gateway, lg)

	// Background reachability check so the status command can report
	// connectivity without issuing a request.
	monitor := probe.New(func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/menu", nil)
		if err != nil {
			return err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return errors.Errorf("backend unhealthy: status %d", resp.StatusCode)
		}
		return nil
	}, cfg.Probe.Interval, cfg.Probe.Timeout)
	monitor.Start(ctx)
	defer monitor.Stop()

	repl := newREPL(store, gateway, basket, workflow, monitor, os.Stdout, lg)

	// Reading stdin cannot be interrupted, so a detached reader goroutine
	// feeds lines into a channel and the processor selects on line vs.
	// cancellation. The reader is deliberately not part of the group: a
	// goroutine blocked in a stdin read has nothing useful to wait for.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return repl.run(ctx, lines)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// streamtest connects to a server and prints every subscribed event to
// the console, exercising the full client stack: config, logging,
// supervisor, streamer and metrics.
// Usage: go run ./cmd/streamtest --config config.yaml --events playlist,status
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lyrebirdhq/clientbase/config"
	"github.com/lyrebirdhq/clientbase/errs"
	"github.com/lyrebirdhq/clientbase/logging"
	"github.com/lyrebirdhq/clientbase/metrics"
	"github.com/lyrebirdhq/clientbase/streamer"
	"github.com/lyrebirdhq/clientbase/version"
	"github.com/lyrebirdhq/clientbase/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to config file")
	route := flag.String("route", "ws", "websocket route on the server")
	events := flag.String("events", "", "comma-separated event types to subscribe to")
	metricsPort := flag.Int("metrics-port", 0, "serve Prometheus metrics on this port (0 disables)")
	debug := flag.Bool("debug", false, "force debug logging")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath, *debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return errs.ExitCode(err)
	}

	logger := logging.Setup(cfg.LogLevel)
	logger.Info("starting streamtest", "version", version.String(), "config", *configPath)

	sup := worker.NewSupervisor(logger)
	w := sup.Worker("streamer")

	opts := []streamer.Option{
		streamer.WithLogger(logger),
		streamer.WithHeader(cfg.Server.AuthHeader()),
	}

	if *metricsPort > 0 {
		registry := prometheus.NewRegistry()
		opts = append(opts, streamer.WithMetrics(metrics.NewStreamer(registry)))

		go func() {
			addr := fmt.Sprintf(":%d", *metricsPort)
			logger.Info("serving metrics", "addr", addr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(registry))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	client, err := streamer.New(cfg.Server.Streamer(*route), w, opts...)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return errs.ExitCode(err)
	}

	for _, eventType := range strings.Split(*events, ",") {
		eventType = strings.TrimSpace(eventType)
		if eventType == "" {
			continue
		}
		client.HandleEvent(eventType, printEvent(eventType))
	}

	client.OnConnected(func() {
		logger.Info("streaming started, press Ctrl+C to stop", "url", client.ServerURL())
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	client.Start()

	// drain escalated errors until one is fatal or a signal arrives
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var fatal error
	for fatal == nil {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig.String())
			shutdown(sup, w, client, logger)
			return errs.ExitOK

		case <-ticker.C:
			for _, entry := range sup.Errors().Drain() {
				if errs.IsKnown(entry.Err) {
					logger.Error("fatal error from worker",
						"worker", entry.WorkerID, "error", entry.Err)
				} else {
					logger.Error("unexpected error from worker",
						"worker", entry.WorkerID, "error", entry.Err,
						"stack", string(entry.Stack))
				}
				fatal = entry.Err
			}
		}
	}

	shutdown(sup, w, client, logger)
	return errs.ExitCode(fatal)
}

func shutdown(sup *worker.Supervisor, w *worker.Worker, client *streamer.Client, logger *slog.Logger) {
	sup.Stop().Set()
	client.Close()
	w.Wait()
	for _, entry := range sup.Errors().Drain() {
		logger.Warn("error during shutdown", "worker", entry.WorkerID, "error", entry.Err)
	}
	logger.Info("shutdown complete")
}

// printEvent returns a handler that prints the event payload to stdout.
func printEvent(eventType string) streamer.Handler {
	return func(data json.RawMessage) error {
		if data == nil {
			fmt.Printf("[%s]\n", eventType)
			return nil
		}

		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			// scalar payloads print as-is
			fmt.Printf("[%s] %s\n", eventType, data)
			return nil
		}

		formatted, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", eventType, formatted)
		return nil
	}
}

// Package main implements the proteovis command. It groups the STRING network of a
// protein-group query once, or serves grouping requests over NATS with -serve.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atanasg/ProteoVisualizer/config"
	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/health"
	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/natsclient"
	"github.com/atanasg/ProteoVisualizer/pkg/cache"
	"github.com/atanasg/ProteoVisualizer/pkg/retry"
	"github.com/atanasg/ProteoVisualizer/pkg/tlsutil"
	"github.com/atanasg/ProteoVisualizer/retrieval"
	"github.com/atanasg/ProteoVisualizer/service"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "proteovis"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			return
		}
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		return flag.ErrHelp
	}

	logger := setupLogger(stderr, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		logger.Info("Configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := metric.NewMetricsRegistry()
	natsClient, err := connectToNATS(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
		defer closeCancel()
		if err := natsClient.Close(closeCtx); err != nil {
			logger.Warn("NATS close failed", "error", err)
		}
	}()

	svc, err := buildService(cfg, natsClient, registry, logger)
	if err != nil {
		return err
	}

	if cliCfg.Serve {
		return serve(ctx, cfg, svc, natsClient, registry, logger)
	}
	return runOnce(ctx, cliCfg, svc, stdin, stdout)
}

// loadConfig loads the defaults, the optional file layer and the environment.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader.AddLayer(path)
	}
	loader.EnableValidation(true)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// connectToNATS creates the client and connects with startup retries.
func connectToNATS(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) (*natsclient.Client, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithLogger(logger),
		natsclient.WithMetrics(registry),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithTimeout(cfg.NATS.Timeout),
		natsclient.WithRequestTimeout(cfg.NATS.RequestTimeout),
		natsclient.WithHandlerTimeout(cfg.Service.HandlerTimeout),
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithHealthChangeCallback(logHealthChange(logger)),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}
	tlsConfig, err := tlsutil.LoadClientTLSConfig(cfg.NATS.TLS)
	if err != nil {
		return nil, fmt.Errorf("load NATS TLS config: %w", err)
	}
	opts = append(opts, natsclient.WithTLSConfig(tlsConfig))

	client, err := natsclient.NewClient(strings.Join(cfg.NATS.URLs, ","), opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	logger.Info("Connecting to NATS", "urls", cfg.NATS.URLs)
	if err := retry.Do(ctx, retry.Quick(), func() error { return client.Connect(ctx) }); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}
	return client, nil
}

// buildService wires the retriever, its cache and the grouping service.
func buildService(cfg *config.Config, client *natsclient.Client, registry *metric.MetricsRegistry, logger *slog.Logger) (*service.Service, error) {
	pipelineMetrics, err := metric.NewPipelineMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("register pipeline metrics: %w", err)
	}

	retrieverOpts := []retrieval.Option{
		retrieval.WithSubject(cfg.Retrieval.Subject),
		retrieval.WithRetry(cfg.Retrieval.RetryConfig()),
		retrieval.WithRateLimit(cfg.Retrieval.RateLimit, cfg.Retrieval.RateBurst),
		retrieval.WithLogger(logger),
		retrieval.WithMetrics(registry.CoreMetrics()),
	}
	if cfg.Retrieval.CacheSize > 0 {
		c, err := cache.NewLRU[*retrieval.Payload](cfg.Retrieval.CacheSize,
			cache.WithTTL[*retrieval.Payload](cfg.Retrieval.CacheTTL),
			cache.WithMetrics[*retrieval.Payload](registry, "retrieval"))
		if err != nil {
			return nil, fmt.Errorf("create retrieval cache: %w", err)
		}
		retrieverOpts = append(retrieverOpts, retrieval.WithCache(c))
	}

	policies, err := cfg.Grouping.PolicyRegistry()
	if err != nil {
		return nil, err
	}

	return service.New(retrieval.NewNATSRetriever(client, retrieverOpts...),
		service.WithDefaults(service.Defaults{
			TaxonID:     cfg.Service.DefaultTaxonID,
			Species:     cfg.Service.DefaultSpecies,
			Cutoff:      cfg.Service.DefaultCutoff,
			NetworkType: cfg.Service.DefaultNetworkType,
			Delimiter:   cfg.Service.Delimiter,
		}),
		service.WithMaxNetworks(cfg.Service.MaxNetworks),
		service.WithKeepCollapsed(cfg.Grouping.KeepCollapsed),
		service.WithPolicies(policies),
		service.WithConcatSeparator(cfg.Grouping.ConcatSeparator),
		service.WithGridSpacing(cfg.Grouping.GridSpacing.Horizontal, cfg.Grouping.GridSpacing.Vertical),
		service.WithLogger(logger),
		service.WithMetrics(registry.CoreMetrics(), pipelineMetrics),
	), nil
}

// serve answers NATS requests and exposes metrics until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, svc *service.Service, client *natsclient.Client, registry *metric.MetricsRegistry, logger *slog.Logger) error {
	handler, err := service.NewHandler(svc, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if err := handler.Register(gctx, client, cfg.Service.Queue); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		monitor := health.NewMonitor()
		monitor.AddCheck("nats", natsHealth(client))
		monitor.AddCheck("grouping", svc.Health)

		serverTLS, err := tlsutil.LoadServerTLSConfig(cfg.Metrics.TLS)
		if err != nil {
			return fmt.Errorf("load metrics TLS config: %w", err)
		}
		server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		server.SetHealthHandler(monitor.Handler(appName))
		server.SetTLSConfig(serverTLS)
		g.Go(func() error {
			logger.Info("Metrics server listening", "address", server.Address())
			return server.Start()
		})
		g.Go(func() error {
			<-gctx.Done()
			return server.Stop()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "reason", context.Cause(gctx))
		return nil
	})

	logger.Info("ProteoVisualizer started", "queue", cfg.Service.Queue)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runOnce groups one query and prints the result as JSON.
func runOnce(ctx context.Context, cliCfg *CLIConfig, svc *service.Service, stdin io.Reader, stdout io.Writer) error {
	text, err := readQuery(cliCfg, stdin)
	if err != nil {
		return err
	}

	req := service.Request{
		Query:       text,
		Delimiter:   cliCfg.Delimiter,
		TaxonID:     cliCfg.TaxonID,
		Species:     cliCfg.Species,
		NetworkType: cliCfg.NetworkType,
		NetworkName: cliCfg.NetworkName,
	}
	if cliCfg.Cutoff >= 0 {
		cutoff := cliCfg.Cutoff
		req.Cutoff = &cutoff
	}

	res, err := svc.RetrieveAndGroup(ctx, req)
	if err != nil {
		if errors.Is(err, errors.ErrNoNetwork) {
			return fmt.Errorf("%s: %w", service.NoNetworkMessage, err)
		}
		return err
	}

	var out any = res
	if cliCfg.Export {
		payload, err := svc.Export(res.NetworkID)
		if err != nil {
			return err
		}
		out = payload
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readQuery(cliCfg *CLIConfig, stdin io.Reader) (string, error) {
	switch cliCfg.QueryFile {
	case "":
		return cliCfg.Query, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read query from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(cliCfg.QueryFile)
		if err != nil {
			return "", fmt.Errorf("read query file: %w", err)
		}
		return string(data), nil
	}
}

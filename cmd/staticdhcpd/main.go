// Command staticdhcpd runs a static-assignment DHCPv4 server: it resolves
// every request against an administrator-supplied [backend.Backend], never
// allocating or tracking leases itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/cache"
	"github.com/flan/staticdhcpd/internal/config"
	"github.com/flan/staticdhcpd/internal/engine"
	"github.com/flan/staticdhcpd/internal/hooks"
	"github.com/flan/staticdhcpd/internal/memstore"
	"github.com/flan/staticdhcpd/internal/netlink"
	"github.com/flan/staticdhcpd/internal/resolver"
	"github.com/flan/staticdhcpd/internal/suspend"
)

// shutdownGrace is the timeout of the context the shutdown is logged under.
// run returns as soon as shutdown is requested; it does not wait for
// requests that are still being handled.
const shutdownGrace = 5 * time.Second

func main() {
	confPath := flag.String("config", "staticdhcpd.yaml", "path to the YAML configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*verbose)
	ctx := context.Background()

	if err := run(ctx, *confPath, logger); err != nil {
		logger.ErrorContext(ctx, "fatal", slogutil.KeyError, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}

	return slogutil.New(&slogutil.Config{
		Format:       slogutil.FormatAdGuardLegacy,
		Level:        lvl,
		AddTimestamp: true,
	})
}

func run(ctx context.Context, confPath string, logger *slog.Logger) (err error) {
	conf, err := loadConfig(confPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	app, err := newApp(ctx, conf, logger)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() {
		err = errors.WithDeferred(err, app.close())
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reloadCh := make(chan os.Signal, 1)
	signal.Notify(reloadCh, syscall.SIGHUP)
	defer signal.Stop(reloadCh)

	for _, srv := range app.servers {
		go func(s *engine.Server) {
			if serveErr := s.Serve(sigCtx); serveErr != nil {
				logger.ErrorContext(sigCtx, "serve loop exited", slogutil.KeyError, serveErr)
			}
		}(srv)
	}

	go app.servers[0].RunTicker(sigCtx)

	logger.InfoContext(ctx, "started", "config", confPath)

	for {
		select {
		case <-sigCtx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()

			logger.InfoContext(shutdownCtx, "shutting down")

			return nil
		case <-reloadCh:
			logger.InfoContext(ctx, "reloading")

			if reloadErr := app.engine.Reinitialise(ctx); reloadErr != nil {
				logger.ErrorContext(ctx, "reinitialise failed", slogutil.KeyError, reloadErr)
			}
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	conf := &config.Config{
		Suspend: config.DefaultSuspendConfig(),
	}
	if err = yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err = conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return conf, nil
}

// app holds every long-lived component wired together by main, so it can
// be torn down in reverse order on exit.
type app struct {
	engine  *engine.Engine
	servers []*engine.Server
	conn    *netlink.Conn
}

func newApp(ctx context.Context, conf *config.Config, logger *slog.Logger) (*app, error) {
	be, err := memstore.Open(conf.BackendPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening backend store: %w", err)
	}

	resolved := backendFrom(be, conf, logger)
	safeHooks := &hooks.Safe{Inner: hooks.None{}, Logger: logger}

	res := resolver.New(resolved, safeHooks)

	susp := suspend.New(suspend.Config{
		Enabled:                   conf.Suspend.Enabled,
		SuspendThreshold:          conf.Suspend.SuspendThreshold,
		MisbehavingTimeout:        conf.Suspend.MisbehavingClientTimeout.Duration,
		UnauthorizedClientTimeout: conf.Suspend.UnauthorizedClientTimeout.Duration,
	})

	reg := prometheus.NewRegistry()

	e := engine.New(engine.Config{
		ServerID:      conf.ServerIP,
		Authoritative: conf.Authoritative,
		NAKRenewals:   conf.NAKRenewals,
	}, res, susp, safeHooks, logger, reg)

	if conf.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		go func() {
			if srvErr := http.ListenAndServe(conf.MetricsAddr, mux); srvErr != nil {
				logger.Error("metrics server exited", slogutil.KeyError, srvErr)
			}
		}()
	}

	qtags := make([]netlink.QTag, 0, len(conf.ResponseInterfaceQTags))
	for _, t := range conf.ResponseInterfaceQTags {
		qtags = append(qtags, netlink.QTag{PCP: t.PCP, DEI: t.DEI, VID: t.VID})
	}

	conn, err := netlink.Bind(netlink.Config{
		ServerIP:          conf.ServerIP,
		ServerPort:        conf.ServerPort,
		ClientPort:        conf.ClientPort,
		ProxyPort:         conf.ProxyPort,
		ResponseInterface: conf.ResponseInterface,
		ResponseQTags:     qtags,
	})
	if err != nil {
		return nil, fmt.Errorf("binding sockets: %w", err)
	}

	srv := engine.NewServer(e, conn, logger)

	return &app{engine: e, servers: []*engine.Server{srv}, conn: conn}, nil
}

// backendFrom wraps be in a Cache when caching is enabled.
func backendFrom(be *memstore.Store, conf *config.Config, logger *slog.Logger) backend.Backend {
	if !conf.Cache.Enabled {
		return be
	}

	c, err := cache.New(be, cache.Config{
		Enabled:        conf.Cache.Enabled,
		OnDisk:         conf.Cache.OnDisk,
		DBPath:         conf.Cache.DBPath,
		PersistentPath: conf.Cache.PersistentPath,
		NegativeTTL:    conf.Cache.NegativeTTL.Duration,
	}, logger)
	if err != nil {
		logger.Warn("cache unavailable, falling back to direct backend lookups", slogutil.KeyError, err)

		return be
	}

	return c
}

func (a *app) close() error {
	return a.conn.Close()
}

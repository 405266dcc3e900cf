package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/harbor"
	"github.com/aretw0/harbor/internal/config"
	"github.com/aretw0/harbor/internal/demo"
	"github.com/aretw0/harbor/internal/logging"
	"github.com/aretw0/harbor/pkg/adapters/file"
	"github.com/aretw0/harbor/pkg/adapters/memory"
	"github.com/aretw0/harbor/pkg/adapters/redis"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/observability"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// app holds the process-wide wiring derived from the configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    ports.Checkpointer
	locker   ports.DistributedLocker
	registry *prometheus.Registry
	metrics  *observability.Metrics
	closers  []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logging.NewWriter(os.Stderr, level, cfg.LogFormat == "json"),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.metrics, err = observability.NewMetrics(a.registry); err != nil {
		return nil, err
	}
	if err := a.openStore(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore() error {
	c := a.cfg.Checkpointer
	switch c.Kind {
	case config.KindNone:
	case config.KindMemory:
		a.store = memory.NewCheckpointer()
	case config.KindFile:
		a.store = file.NewCheckpointer(c.Dir)
	case config.KindRedis:
		var opts []redis.Option
		if c.Prefix != "" {
			opts = append(opts, redis.WithPrefix(c.Prefix))
		}
		if c.TTL > 0 {
			opts = append(opts, redis.WithTTL(c.TTL))
		}
		store := redis.New(c.Addr, c.Password, c.DB, opts...)
		prefix := c.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		a.store = store
		a.locker = redis.NewLocker(store.Client(), prefix)
		a.closers = append(a.closers, store.Close)
	default:
		return fmt.Errorf("unsupported checkpointer kind %q", c.Kind)
	}
	a.logger.Debug("checkpointer ready", "kind", c.Kind)
	return nil
}

// flow declares the named demo flow and compiles it with the process wiring.
func (a *app) flow(name string) (ports.Artifact, domain.Topology, error) {
	f, err := demo.Lookup(name)
	if err != nil {
		return nil, domain.Topology{}, err
	}
	opts := []ports.CompileOption{
		ports.WithMaxSteps(a.cfg.MaxSteps),
		ports.WithHooks(domain.ChainHooks(a.metrics.Hooks(), observability.LogHooks(a.logger))),
	}
	if a.store != nil {
		opts = append(opts, ports.WithCheckpointer(a.store))
	}
	if a.locker != nil {
		opts = append(opts, ports.WithLocker(a.locker))
	}
	return f.Declare(harbor.WithLogger(a.logger)).CompileTopology(opts...)
}

// threads wraps the store in a session manager, so edits take the distributed lock
// that running flows hold.
func (a *app) threads() (*session.Manager, error) {
	if a.store == nil {
		return nil, errNoStore
	}
	return session.NewManager(a.store, session.WithLocker(a.locker), session.WithLogger(a.logger)), nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "err", err)
		}
	}
}

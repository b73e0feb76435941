// Package sources builds collectors by source name.
package sources

import (
	"context"
	"fmt"
	"strings"

	"netmigration/widcollector/config"
	"netmigration/widcollector/internal"
	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/collector/snapshot"
	"netmigration/widcollector/internal/collector/wid"
	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/pkg/errors"
)

// Source names accepted by New
const (
	WID      = "wid"
	Snapshot = "snapshot"
)

// Names lists the known source names
func Names() []string {
	return []string{WID, Snapshot}
}

// Factory builds a fresh, unconnected collector on every call
type Factory func() (collector.Collector, error)

// RetryPolicy derives the collector retry policy from the configuration
func RetryPolicy(cfg *config.Config) collector.RetryPolicy {
	p := collector.DefaultRetryPolicy()
	p.MaxAttempts = cfg.RetryAttempts
	p.InitialInterval = cfg.RetryInitial
	p.MaxInterval = cfg.RetryMax
	return p
}

// New creates the collector registered under name. When deps carries a
// cache service the collector is wrapped in the record cache.
func New(name string, cfg *config.Config, deps internal.Dependencies) (collector.Collector, error) {
	var c collector.Collector

	switch strings.ToLower(strings.TrimSpace(name)) {
	case WID:
		opts := wid.Options{
			Settings:       cfg.Source(config.SourceWID),
			Launcher:       deps.Launcher,
			ExecutablePath: cfg.BrowserExecutable,
			Timeout:        cfg.BrowserTimeout,
			Retry:          RetryPolicy(cfg),
		}
		if cfg.SaveSnapshots {
			opts.SnapshotDir = cfg.DataDir
		}
		c = wid.New(opts)
	case Snapshot:
		c = snapshot.New(snapshot.Options{
			Source:     wid.Name,
			DataDir:    cfg.DataDir,
			Normalizer: wid.Normalizer(),
		})
	default:
		return nil, errors.NewConfiguration(
			fmt.Sprintf("unknown source %q (known: %s)", name, strings.Join(Names(), ", ")), nil)
	}

	if deps.Cache != nil {
		c = collector.NewCached(c, deps.Cache, cfg.RecordCacheTTL)
	}
	return c, nil
}

// NewFactory checks name once and returns a Factory for it
func NewFactory(name string, cfg *config.Config, deps internal.Dependencies) (Factory, error) {
	if _, err := New(name, cfg, deps); err != nil {
		return nil, err
	}
	return func() (collector.Collector, error) {
		return New(name, cfg, deps)
	}, nil
}

// Lookup connects c, searches one service and disconnects again
func Lookup(ctx context.Context, c collector.Collector, serviceID string) (*record.ServiceData, bool, error) {
	var (
		rec   *record.ServiceData
		found bool
	)
	err := collector.WithSession(ctx, c, func(ctx context.Context, c collector.Collector) error {
		var err error
		rec, found, err = c.SearchByService(ctx, serviceID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return rec, found, nil
}

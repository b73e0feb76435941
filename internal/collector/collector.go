package collector

import (
	"context"

	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/logger"
)

// Collector is the contract every source system implements.
// One instance holds at most one session and serves one operation at a time.
type Collector interface {
	// Name returns the source-system tag stamped on produced records
	Name() string

	// Connect establishes a session. Calling it while connected is a no-op.
	Connect(ctx context.Context) error

	// Disconnect releases the session. Safe to call when never connected.
	Disconnect() error

	// IsConnected reports whether a session is open
	IsConnected() bool

	// SearchByService looks up exactly one record. found is false, with a nil
	// error, when the source reports zero matches.
	SearchByService(ctx context.Context, serviceID string) (rec *record.ServiceData, found bool, err error)

	// SearchByGroup returns every record sharing a grouping key such as an
	// aggregation ring. An empty group yields an empty slice, not an error.
	SearchByGroup(ctx context.Context, groupID string) ([]record.ServiceData, error)
}

// WithSession connects c, runs fn and always disconnects afterwards,
// including when fn fails, panics or ctx is cancelled.
func WithSession(ctx context.Context, c Collector, fn func(ctx context.Context, c Collector) error) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Disconnect(); err != nil {
			logger.ForCollector(c.Name()).Warn().Err(err).Msg("Disconnect failed")
		}
	}()

	return fn(ctx, c)
}

package worker

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/alitto/pond/v2"

	"netmigration/widcollector/helpers"
	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/pkg/errors"
	"netmigration/widcollector/services/publisher"
)

// Summary reports the outcome of a batch
type Summary struct {
	Requested int               `json:"requested"`
	Found     []string          `json:"found"`
	NotFound  []string          `json:"not_found"`
	Failed    map[string]string `json:"failed"`
	Published int               `json:"published"`
	Duration  time.Duration     `json:"duration"`
}

type shardResult struct {
	found     []string
	notFound  []string
	failed    map[string]string
	published int
}

// Worker collects a batch of services over several independent sessions
// and publishes every record it finds
type Worker struct {
	ctx       context.Context
	factory   func() (collector.Collector, error)
	publisher publisher.Publisher
	logger    helpers.LoggerInterface
	sessions  int
}

// NewWorker creates a new worker. pub may be nil to only collect.
func NewWorker(
	ctx context.Context,
	factory func() (collector.Collector, error),
	pub publisher.Publisher,
	logger helpers.LoggerInterface,
	sessions int,
) *Worker {
	if sessions < 1 {
		sessions = 1
	}
	return &Worker{
		ctx:       ctx,
		factory:   factory,
		publisher: pub,
		logger:    logger,
		sessions:  sessions,
	}
}

// Run collects ids. Failures of single ids or whole sessions are recorded
// in the summary and the error ledger; only cancellation aborts the batch.
func (w *Worker) Run(ids []string) (Summary, error) {
	start := time.Now()
	ids = uniqueIDs(ids)
	summary := Summary{
		Requested: len(ids),
		Found:     []string{},
		NotFound:  []string{},
		Failed:    map[string]string{},
	}
	if len(ids) == 0 {
		return summary, nil
	}

	shards := split(ids, w.sessions)
	pool := pond.NewResultPool[shardResult](len(shards))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(w.ctx)
	for _, shard := range shards {
		group.SubmitErr(func() (shardResult, error) {
			res := w.runShard(shard)
			return res, w.ctx.Err()
		})
	}

	results, err := group.Wait()
	for _, res := range results {
		summary.Found = append(summary.Found, res.found...)
		summary.NotFound = append(summary.NotFound, res.notFound...)
		for id, msg := range res.failed {
			summary.Failed[id] = msg
		}
		summary.Published += res.published
	}
	sort.Strings(summary.Found)
	sort.Strings(summary.NotFound)

	if w.publisher != nil && summary.Published > 0 {
		if trimErr := w.publisher.TrimStreams(); trimErr != nil {
			w.logger.LogError("StreamTrimming", trimErr)
		}
	}

	summary.Duration = time.Since(start)
	w.logger.LogInfo("Batch finished: %d requested, %d found, %d not found, %d failed in %s",
		summary.Requested, len(summary.Found), len(summary.NotFound), len(summary.Failed), summary.Duration)
	return summary, err
}

// runShard processes ids in one scoped session
func (w *Worker) runShard(ids []string) shardResult {
	res := shardResult{failed: map[string]string{}}

	c, err := w.factory()
	if err != nil {
		w.failAll(&res, ids, "session", err)
		return res
	}

	var done int
	err = collector.WithSession(w.ctx, c, func(ctx context.Context, c collector.Collector) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.collectOne(ctx, c, id, &res); err != nil {
				return err
			}
			done++
		}
		return nil
	})
	if err != nil {
		w.failAll(&res, ids[done:], c.Name(), err)
	}
	return res
}

// collectOne records the outcome of one id. It only returns an error when
// the session is gone, which ends the shard.
func (w *Worker) collectOne(ctx context.Context, c collector.Collector, id string, res *shardResult) error {
	rec, found, err := c.SearchByService(ctx, id)
	if errors.IsNotConnected(err) {
		return err
	}
	if err != nil {
		w.logger.LogError(id, err)
		res.failed[id] = err.Error()
		return nil
	}
	if !found {
		res.notFound = append(res.notFound, id)
		return nil
	}
	res.found = append(res.found, id)

	if w.publisher == nil {
		return nil
	}
	if err := w.publish(rec); err != nil {
		w.logger.LogError(id, err)
		return nil
	}
	res.published++
	return nil
}

func (w *Worker) publish(rec *record.ServiceData) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return w.publisher.Publish(rec.ServiceID, data)
}

func (w *Worker) failAll(res *shardResult, ids []string, name string, err error) {
	w.logger.LogError(name, err)
	for _, id := range ids {
		res.failed[id] = err.Error()
	}
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first-seen order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// split deals ids round-robin into at most n non-empty shards
func split(ids []string, n int) [][]string {
	if n > len(ids) {
		n = len(ids)
	}
	shards := make([][]string, n)
	for i, id := range ids {
		shards[i%n] = append(shards[i%n], id)
	}
	return shards
}

// Package snapshot replays detail pages saved by a portal collector.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"netmigration/widcollector/helpers"
	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/extract"
	"netmigration/widcollector/internal/normalize"
	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/logger"
	"netmigration/widcollector/pkg/errors"
)

const ext = ".html"

// Dir returns the directory holding the snapshots of a source system
func Dir(dataDir, source string) string {
	return filepath.Join(dataDir, strings.ToLower(source))
}

// Path returns the snapshot file of one service
func Path(dataDir, source, serviceID string) string {
	return filepath.Join(Dir(dataDir, source), serviceID+ext)
}

// Write stores a detail page. The file is written next to its final name
// and renamed, so readers never observe a partial page.
func Write(dataDir, source, serviceID string, html []byte) (string, error) {
	if err := validID(serviceID); err != nil {
		return "", err
	}
	dir := Dir(dataDir, source)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+serviceID+"-*")
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}

	path := Path(dataDir, source, serviceID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}
	return path, nil
}

// ids never leave the snapshot directory
func validID(serviceID string) error {
	if serviceID == "" || serviceID != filepath.Base(serviceID) || strings.HasPrefix(serviceID, ".") {
		return fmt.Errorf("invalid service id %q", serviceID)
	}
	return nil
}

// Options configures a snapshot collector
type Options struct {
	// Source is the tag stamped on records and the snapshot subdirectory
	Source     string
	DataDir    string
	Normalizer *normalize.Normalizer
	Now        func() time.Time
}

// Collector serves records from saved detail pages
type Collector struct {
	opts Options
	dir  string
	log  *logger.Logger

	mu        sync.Mutex
	connected bool
}

var _ collector.Collector = (*Collector)(nil)

// New creates a snapshot collector
func New(opts Options) *Collector {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Collector{
		opts: opts,
		dir:  Dir(opts.DataDir, opts.Source),
		log:  logger.ForCollector(opts.Source).WithField("mode", "snapshot"),
	}
}

func (c *Collector) Name() string { return c.opts.Source }

func (c *Collector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	info, err := os.Stat(c.dir)
	if err != nil {
		return errors.NewConnection(c.Name(), "snapshot directory unavailable", err)
	}
	if !info.IsDir() {
		return errors.NewConnection(c.Name(), c.dir+" is not a directory", nil)
	}

	c.connected = true
	c.log.Debug().Str("dir", c.dir).Msg("Snapshot store opened")
	return nil
}

func (c *Collector) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *Collector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Collector) SearchByService(ctx context.Context, serviceID string) (*record.ServiceData, bool, error) {
	if !c.IsConnected() {
		return nil, false, errors.NewNotConnected(c.Name())
	}
	serviceID = strings.TrimSpace(serviceID)
	if err := validID(serviceID); err != nil {
		return nil, false, errors.NewValidation(c.Name(), err.Error())
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	rec, err := c.load(Path(c.opts.DataDir, c.opts.Source, serviceID), serviceID)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// SearchByGroup returns the snapshots whose ring name matches groupID,
// ignoring case and surrounding whitespace, ordered by service id
func (c *Collector) SearchByGroup(ctx context.Context, groupID string) ([]record.ServiceData, error) {
	if !c.IsConnected() {
		return nil, errors.NewNotConnected(c.Name())
	}
	group := strings.TrimSpace(groupID)

	matches := []record.ServiceData{}
	if group == "" {
		return matches, nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, errors.NewExtraction(c.Name(), "list snapshots", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
			continue
		}

		id := strings.TrimSuffix(name, ext)
		rec, err := c.load(filepath.Join(c.dir, name), id)
		if err != nil {
			c.log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable snapshot")
			continue
		}
		if rec.RingName != nil && strings.EqualFold(strings.TrimSpace(*rec.RingName), group) {
			matches = append(matches, rec)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ServiceID < matches[j].ServiceID })
	return matches, nil
}

// IDs lists the service ids with a saved snapshot
func (c *Collector) IDs() ([]string, error) {
	var ids []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != c.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if name := d.Name(); filepath.Ext(name) == ext && !strings.HasPrefix(name, ".") {
			ids = append(ids, strings.TrimSuffix(name, ext))
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

func (c *Collector) load(path, serviceID string) (record.ServiceData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record.ServiceData{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return record.ServiceData{}, err
	}

	body, err := helpers.DecodeUTF8(data, "text/html")
	if err != nil {
		return record.ServiceData{}, errors.NewExtraction(c.Name(), "decode snapshot", err)
	}
	attrs, err := extract.Attributes(body)
	if err != nil {
		return record.ServiceData{}, errors.NewExtraction(c.Name(), "parse snapshot", err)
	}
	if len(attrs) == 0 {
		return record.ServiceData{}, errors.NewExtraction(c.Name(), "snapshot has no attribute table", nil)
	}

	// A snapshot is as fresh as the page it holds
	collectedAt := info.ModTime()
	if collectedAt.IsZero() {
		collectedAt = c.opts.Now()
	}
	return c.opts.Normalizer.Normalize(serviceID, c.Name(), attrs, collectedAt.UTC())
}

// Read returns the raw bytes of a snapshot, for tools that inspect pages
func Read(dataDir, source, serviceID string) ([]byte, error) {
	if err := validID(serviceID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(Path(dataDir, source, serviceID))
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(data), nil
}

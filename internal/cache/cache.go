// Package cache implements the optional memoizing layer that sits between
// the resolver and a Backend: positive results are held until the next
// reinitialise, negative results are cached only if opted into with a TTL,
// and an optional persistent snapshot survives process restarts as a
// degraded fallback should the primary Backend be unavailable.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/flan/staticdhcpd/internal/backend"
	"github.com/flan/staticdhcpd/internal/dhcpmsg"
)

// Config holds the Cache's tunables, matching spec.md §4.4.
type Config struct {
	// Enabled turns the cache on at all.
	Enabled bool

	// OnDisk backs the live cache table with an embedded key-value file
	// instead of an in-memory map.
	OnDisk bool

	// DBPath is the embedded key-value file's path. Required if OnDisk.
	DBPath string

	// PersistentPath, if set, is where a full-table snapshot is written on
	// every reinitialise and loaded at startup as a degraded fallback.
	PersistentPath string

	// NegativeTTL enables negative caching (a MAC known to be unresolvable)
	// for the given duration. Zero disables negative caching.
	NegativeTTL time.Duration
}

// type check
var _ backend.Backend = (*Cache)(nil)

// Cache decorates an inner Backend with the memoizing behaviour described
// above. It implements Backend itself so the engine can use one
// interchangeably with the other.
type Cache struct {
	inner  backend.Backend
	conf   Config
	logger *slog.Logger

	store store

	persistMu sync.Mutex
}

// store is the live-table backing implementation: either an in-memory map
// or an embedded key-value file.
type store interface {
	get(mac string) (entry, bool, error)
	set(mac string, e entry) error
	flush() error
	rangeEntries(func(mac string, e entry) bool) error
	close() error
}

// entry is what the cache stores per MAC: either a positive result (one or
// more Definitions) or a negative one (none), timestamped so negative
// entries can expire.
type entry struct {
	Definitions []*backend.Definition
	Negative    bool
	CachedAt    time.Time
}

// New constructs a Cache wrapping inner. If conf.OnDisk is set, dbPath must
// be reachable; New opens (creating if absent) the backing store.
func New(inner backend.Backend, conf Config, logger *slog.Logger) (*Cache, error) {
	var st store
	var err error

	if conf.OnDisk {
		st, err = newBoltStore(conf.DBPath)
	} else {
		st = newMemoryStore()
	}
	if err != nil {
		return nil, errors.Annotate(err, "opening cache store: %w")
	}

	c := &Cache{inner: inner, conf: conf, logger: logger, store: st}

	if conf.PersistentPath != "" {
		if err = c.loadPersistentSnapshot(); err != nil {
			logger.Warn("loading persistent cache snapshot", slogutil.KeyError, err)
		}
	}

	return c, nil
}

// Lookup implements [backend.Backend]. It is the one operation every
// request takes, so the hot path (a positive hit) never touches the inner
// Backend.
func (c *Cache) Lookup(
	ctx context.Context,
	mac dhcpmsg.MAC,
	meta backend.Meta,
) ([]*backend.Definition, error) {
	key := mac.String()

	if e, ok, err := c.store.get(key); err == nil && ok {
		if !e.Negative {
			return e.Definitions, nil
		}

		if c.conf.NegativeTTL > 0 && time.Since(e.CachedAt) < c.conf.NegativeTTL {
			return nil, nil
		}
	}

	defs, err := c.inner.Lookup(ctx, mac, meta)
	if err != nil {
		if errors.Is(err, backend.ErrBackendUnavailable) && c.conf.PersistentPath != "" {
			if e, ok, perr := c.store.get(key); perr == nil && ok {
				c.logger.WarnContext(ctx, "backend unavailable, serving from persistent fallback",
					"mac", key, slogutil.KeyError, err)

				return e.Definitions, nil
			}
		}

		return nil, err
	}

	if len(defs) > 0 {
		_ = c.store.set(key, entry{Definitions: defs, CachedAt: time.Now()})
	} else if c.conf.NegativeTTL > 0 {
		_ = c.store.set(key, entry{Negative: true, CachedAt: time.Now()})
	}

	return defs, nil
}

// Reinitialise implements [backend.Backend]. It snapshots the live table to
// disk, if persistence is configured, before flushing it, so the fallback
// snapshot reflects the last known-good data rather than an empty table; it
// flushes even if the inner Backend fails to reinitialise, since stale data
// is worse than none.
func (c *Cache) Reinitialise(ctx context.Context) error {
	if c.conf.PersistentPath != "" {
		if snapErr := c.savePersistentSnapshot(); snapErr != nil {
			c.logger.ErrorContext(ctx, "saving persistent cache snapshot", slogutil.KeyError, snapErr)
		}
	}

	err := c.inner.Reinitialise(ctx)

	if flushErr := c.store.flush(); flushErr != nil {
		err = errors.WithDeferred(err, flushErr)
	}

	return err
}

// Close releases the cache's backing store.
func (c *Cache) Close() error {
	return c.store.close()
}

package cache

import (
	"encoding/json"
	"io/fs"
	"os"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/google/renameio/v2/maybe"

	"github.com/flan/staticdhcpd/internal/backend"
)

// persistentPerm is the permission mode for the persistent snapshot file.
const persistentPerm fs.FileMode = 0o640

// snapshot is the on-disk shape of a persistent cache snapshot: a flat list
// rather than a map, so the JSON stays stable regardless of map iteration
// order.
type snapshot struct {
	Entries []snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	MAC         string                `json:"mac"`
	Negative    bool                  `json:"negative"`
	CachedAt    time.Time             `json:"cached_at"`
	Definitions []*backend.Definition `json:"definitions,omitempty"`
}

// loadPersistentSnapshot reads the snapshot file, if any, into the live
// store — a degraded bootstrap used when the primary Backend turns out to
// be unavailable on a subsequent lookup.
func (c *Cache) loadPersistentSnapshot() error {
	data, err := os.ReadFile(c.conf.PersistentPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return errors.Annotate(err, "reading persistent cache snapshot: %w")
	}

	var snap snapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return errors.Annotate(err, "decoding persistent cache snapshot: %w")
	}

	for _, se := range snap.Entries {
		err = c.store.set(se.MAC, entry{
			Definitions: se.Definitions,
			Negative:    se.Negative,
			CachedAt:    se.CachedAt,
		})
		if err != nil {
			return errors.Annotate(err, "restoring persistent cache entry: %w")
		}
	}

	return nil
}

// savePersistentSnapshot writes the full live table to the snapshot file,
// atomically, the way dhcpsvc's lease database does it.
func (c *Cache) savePersistentSnapshot() error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	var snap snapshot
	err := c.store.rangeEntries(func(mac string, e entry) bool {
		snap.Entries = append(snap.Entries, snapshotEntry{
			MAC:         mac,
			Negative:    e.Negative,
			CachedAt:    e.CachedAt,
			Definitions: e.Definitions,
		})

		return true
	})
	if err != nil {
		return errors.Annotate(err, "enumerating cache for snapshot: %w")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return err
	}

	return maybe.WriteFile(c.conf.PersistentPath, data, persistentPerm)
}

package dataset

import (
	"sync/atomic"

	"github.com/shelfstats/shelfstats-server/internal/logger"
)

// Handle is the shared-read access point for the current snapshot.
//
// The snapshot itself is immutable; the handle only exists so an optional
// reload (file watcher) can atomically swap in a new snapshot. Readers take
// a snapshot once per request and never observe a partial swap.
type Handle struct {
	path string
	log  *logger.Logger
	cur  atomic.Pointer[Snapshot]
}

// NewHandle loads the dataset from path and returns a handle to it.
func NewHandle(path string, log *logger.Logger) (*Handle, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}

	h := &Handle{path: path, log: log}
	h.cur.Store(snap)

	log.Info("dataset loaded",
		"path", path,
		"shape", describeShape(snap),
		"snapshot", snap.ID(),
		"has_outlier_column", snap.HasOutliers(),
	)
	return h, nil
}

// Snapshot returns the current snapshot.
func (h *Handle) Snapshot() *Snapshot {
	return h.cur.Load()
}

// Path returns the source file path.
func (h *Handle) Path() string { return h.path }

// Reload loads the source file again and swaps the new snapshot in.
// On failure the previous snapshot stays current.
func (h *Handle) Reload() (*Snapshot, error) {
	snap, err := Load(h.path)
	if err != nil {
		return nil, err
	}
	h.cur.Store(snap)

	h.log.Info("dataset reloaded",
		"path", h.path,
		"shape", describeShape(snap),
		"snapshot", snap.ID(),
	)
	return snap, nil
}

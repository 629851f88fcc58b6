package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfstats/shelfstats-server/internal/config"
	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/search"
	"github.com/shelfstats/shelfstats-server/internal/watcher"
)

// ProvideDatasetHandle loads the dataset. Provider invocation is lazy, so
// the file is read on first use and the parsed snapshot is reused after
// that; a reload only ever happens through the watcher.
func ProvideDatasetHandle(i do.Injector) (*dataset.Handle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return dataset.NewHandle(cfg.Dataset.Path, log)
}

// WatcherHandle wraps the optional file watcher with Shutdownable.
type WatcherHandle struct {
	Watcher *watcher.FileWatcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the dataset file watcher when enabled. On a
// change it swaps in a fresh snapshot and rebuilds the search index.
func ProvideFileWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Dataset.Watch {
		log.Info("Dataset watching disabled by configuration")
		return &WatcherHandle{}, nil
	}

	handle := do.MustInvoke[*dataset.Handle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)

	onChange := func() error {
		snap, err := handle.Reload()
		if err != nil {
			return err
		}
		if searchHandle.Index != nil {
			return searchHandle.Index.Build(snap)
		}
		return nil
	}

	w, err := watcher.New(cfg.Dataset.Path, watcher.DefaultDebounce, onChange, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("dataset watcher stopped")
		}
	}()

	return &WatcherHandle{Watcher: w, cancel: cancel}, nil
}

// SearchIndexHandle wraps the search index with Shutdownable.
type SearchIndexHandle struct {
	Index *search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Index.Close()
}

// ProvideSearchIndex provides the in-memory search index, built from the
// current snapshot. Disabled search yields an empty handle.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return &SearchIndexHandle{}, nil
	}

	handle := do.MustInvoke[*dataset.Handle](i)

	idx, err := search.New(log)
	if err != nil {
		return nil, err
	}
	if err := idx.Build(handle.Snapshot()); err != nil {
		_ = idx.Close()
		return nil, err
	}

	return &SearchIndexHandle{Index: idx}, nil
}

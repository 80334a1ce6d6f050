package server

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/providers/storage"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// storeHandle opens the entry store during bootstrap and hands it to the
// components built before it existed
type storeHandle struct {
	dsn    string
	opts   storage.Options
	logger *logging.Logger

	mu    sync.RWMutex
	store *storage.Store
}

func newStoreHandle(dsn string, logger *logging.Logger) *storeHandle {
	opts := storage.DefaultOptions()
	opts.Logger = logger.Named("storage")
	return &storeHandle{dsn: dsn, opts: opts, logger: logger}
}

// Open satisfies workspace.Opener
func (h *storeHandle) Open(ctx context.Context) (workspace.Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store != nil {
		return h.store, nil
	}

	store, err := storage.Open(ctx, h.dsn, h.opts)
	if err != nil {
		return nil, err
	}
	h.store = store
	return store, nil
}

func (h *storeHandle) current() (*storage.Store, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.store == nil {
		return nil, workspace.ErrNotReady
	}
	return h.store, nil
}

func (h *storeHandle) Get(ctx context.Context, path string) (*types.Entry, error) {
	s, err := h.current()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, path)
}

func (h *storeHandle) Put(ctx context.Context, path, content string) (*types.Entry, error) {
	s, err := h.current()
	if err != nil {
		return nil, err
	}
	return s.Put(ctx, path, content)
}

func (h *storeHandle) Glob(ctx context.Context, pattern string) ([]types.Entry, error) {
	s, err := h.current()
	if err != nil {
		return nil, err
	}
	return s.Glob(ctx, pattern)
}

func (h *storeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store = nil
	return err
}

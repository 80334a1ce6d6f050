package workspace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Bootstrap opens storage, seeds client sources, and lists the root.
// Commands are rejected with ErrNotReady until seeding completes.
// A storage failure is terminal and leaves a persistent notice.
func (c *Controller) Bootstrap(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.observe("bootstrap", start, err) }()

	c.mu.Lock()
	if c.booted {
		c.mu.Unlock()
		return newError(KindPrecondition, "bootstrap", "", ErrAlreadyStarted)
	}
	c.booted = true
	c.mu.Unlock()

	c.view.SetLoading(true, "Initializing storage...")
	c.view.ShowEditor(nil)

	if c.open == nil {
		return c.fail(fmt.Errorf("no storage configured"))
	}
	store, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.store = store
	c.mu.Unlock()
	c.notify(types.NoticeSuccess, NoticeShort, "Storage ready.")

	c.view.SetLoading(true, "Loading client sources...")
	loaded, failed := c.seed(ctx)
	c.logger.Info("Seeded client sources",
		zap.Int("loaded", loaded),
		zap.Int("failed", failed))

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()

	if err := c.refresh(ctx, paths.Root); err != nil {
		c.logger.Warn("Initial listing failed", zap.Error(err))
	}
	c.transition(Settled{})
	return nil
}

func (c *Controller) fail(err error) error {
	c.logger.Error("Critical initialization error", zap.Error(err))

	c.mu.Lock()
	c.failed = true
	c.gen++
	tree := NewTree(paths.Root, c.gen)
	tree.Fail(RootID, fmt.Errorf("storage unavailable: %w", err))
	c.tree = tree
	c.mu.Unlock()

	c.view.SetLoading(false, "")
	c.render()
	c.notify(types.NoticeError, types.Persistent, fmt.Sprintf("Critical initialization error: %v", err))
	return newError(KindStoreFailure, "bootstrap", "", err)
}

// seed copies the bundled client sources into the source directory.
// Each file succeeds or fails on its own.
func (c *Controller) seed(ctx context.Context) (loaded, failed int) {
	if c.fetcher == nil {
		return 0, 0
	}
	if err := c.store.EnsureDirectory(ctx, paths.Source); err != nil {
		c.logger.Warn("Failed to ensure source directory", zap.Error(err))
	}

	for _, name := range c.seedFiles {
		target := paths.Join(paths.Source, name)

		content, err := c.fetcher.Fetch(ctx, name)
		if err == nil {
			_, err = c.store.Put(ctx, target, content)
		}
		if err != nil {
			failed++
			c.logger.Warn("Failed to seed client source",
				zap.String("name", name),
				zap.Error(err))
			c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to load %s: %v", name, err))
			continue
		}
		loaded++
	}

	if failed == 0 && loaded > 0 {
		c.notify(types.NoticeInfo, NoticeShort, "Client sources loaded.")
	}
	return loaded, failed
}

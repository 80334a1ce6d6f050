package workspace

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

const discardPrompt = "There are unsaved changes. Continue without saving?"

// SortEntries orders containers before documents, then by locale-aware name
func SortEntries(entries []types.Entry, tag language.Tag) {
	col := collate.New(tag)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}

// Navigate lists dir as the new current directory.
// Unsaved changes are discarded only after confirmation.
func (c *Controller) Navigate(ctx context.Context, dir string) (err error) {
	start := time.Now()
	defer func() { c.observe("navigate", start, err) }()

	if err := c.checkReady("navigate"); err != nil {
		return err
	}
	dir = paths.AsDir(dir)

	if ok, err := c.confirmDiscard(ctx, "navigate"); !ok {
		return err
	}
	return c.refresh(ctx, dir)
}

// confirmDiscard asks before dropping unsaved changes.
// It returns false with the error to report when the caller must abort.
func (c *Controller) confirmDiscard(ctx context.Context, op string) (bool, error) {
	s := c.State()
	if !s.Dirty || !s.HasSelection() {
		return true, nil
	}
	ok, err := c.confirm(ctx, discardPrompt)
	if err != nil {
		return false, newError(KindInternal, op, s.SelectedPath, err)
	}
	if !ok {
		return false, newError(KindCancelled, op, s.SelectedPath, ErrCancelled)
	}
	return true, nil
}

// refresh rebuilds the tree for dir and resets the selection.
// A listing that finishes after a newer navigation is dropped.
func (c *Controller) refresh(ctx context.Context, dir string) error {
	c.mu.Lock()
	c.gen++
	tree := NewTree(dir, c.gen)
	c.tree = tree
	c.mu.Unlock()

	c.transition(Navigated{Dir: dir})
	c.view.SetLoading(true, StatusLoading)

	entries, err := c.store.List(ctx, dir)

	c.mu.Lock()
	current := c.tree == tree
	if err != nil {
		tree.Fail(RootID, err)
	} else {
		SortEntries(entries, c.lang)
		tree.Populate(RootID, entries)
	}
	c.mu.Unlock()

	c.view.SetLoading(false, "")
	if current {
		c.render()
	}

	if err != nil {
		c.logger.Warn("Failed to list directory", zap.String("dir", dir), zap.Error(err))
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to list %s: %v", dir, err))
		return storeError("navigate", dir, err)
	}
	return nil
}

// Expand reveals the children of a container node, listing it on first use
func (c *Controller) Expand(ctx context.Context, id NodeID) (err error) {
	start := time.Now()
	defer func() { c.observe("expand", start, err) }()

	if err := c.checkReady("expand"); err != nil {
		return err
	}

	c.mu.Lock()
	tree := c.tree
	node, ok := tree.Node(id)
	if !ok {
		c.mu.Unlock()
		return newError(KindNotFound, "expand", "", ErrUnknownNode)
	}
	if !node.IsDir() {
		c.mu.Unlock()
		return newError(KindPrecondition, "expand", node.Path, ErrNotDirectory)
	}
	tree.SetExpanded(id, true)
	c.mu.Unlock()

	if node.Loaded {
		c.render()
		return nil
	}

	key := fmt.Sprintf("%d/%d", tree.Generation(), id)
	_, err, _ = c.expand.Do(key, func() (interface{}, error) {
		return nil, c.populate(ctx, tree, id, node.Path)
	})

	if c.isCurrent(tree) {
		c.render()
	}
	if err != nil {
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to open %s: %v", node.Name, err))
		return storeError("expand", node.Path, err)
	}
	return nil
}

func (c *Controller) populate(ctx context.Context, tree *Tree, id NodeID, dir string) error {
	c.mu.Lock()
	node, _ := tree.Node(id)
	c.mu.Unlock()
	if node.Loaded {
		return nil
	}

	entries, err := c.store.List(ctx, dir)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		tree.Fail(id, err)
		return err
	}
	SortEntries(entries, c.lang)
	tree.Populate(id, entries)
	return nil
}

// Collapse hides the children of a container node without discarding them
func (c *Controller) Collapse(ctx context.Context, id NodeID) error {
	if err := c.checkReady("collapse"); err != nil {
		return err
	}

	c.mu.Lock()
	node, ok := c.tree.Node(id)
	if !ok {
		c.mu.Unlock()
		return newError(KindNotFound, "collapse", "", ErrUnknownNode)
	}
	if !node.IsDir() {
		c.mu.Unlock()
		return newError(KindPrecondition, "collapse", node.Path, ErrNotDirectory)
	}
	c.tree.SetExpanded(id, false)
	c.mu.Unlock()

	c.render()
	return nil
}

// Toggle flips the disclosure state of a container node
func (c *Controller) Toggle(ctx context.Context, id NodeID) error {
	c.mu.Lock()
	node, ok := c.tree.Node(id)
	c.mu.Unlock()
	if ok && node.Expanded {
		return c.Collapse(ctx, id)
	}
	return c.Expand(ctx, id)
}

// Activate opens a node: containers become the current directory,
// documents are loaded into the editor
func (c *Controller) Activate(ctx context.Context, id NodeID) error {
	c.mu.Lock()
	node, ok := c.tree.Node(id)
	c.mu.Unlock()
	if !ok {
		return newError(KindNotFound, "activate", "", ErrUnknownNode)
	}
	if node.IsDir() {
		return c.Navigate(ctx, node.Path)
	}
	return c.Load(ctx, node.Path)
}

func (c *Controller) isCurrent(tree *Tree) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree == tree
}

package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

const reloadWarning = "Reload the page for changes to client code to take effect."

// Load fetches path into the editor and applies its side effects
func (c *Controller) Load(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { c.observe("load", start, err) }()

	if err := c.checkReady("load"); err != nil {
		return err
	}
	if ok, err := c.confirmDiscard(ctx, "load"); !ok {
		return err
	}
	return c.load(ctx, path)
}

func (c *Controller) load(ctx context.Context, path string) error {
	if path == "" || paths.IsDir(path) {
		return newError(KindPrecondition, "load", path, ErrIsDirectory)
	}

	release, err := c.acquire("load", path)
	if err != nil {
		return err
	}
	defer release()

	c.transition(LoadStarted{Path: path})

	entry, err := c.store.Get(ctx, path)
	if err == nil && entry.IsDir() {
		err = ErrIsDirectory
	}
	if err != nil {
		c.transition(LoadFailed{Path: path})
		if errors.Is(err, types.ErrNotFound) {
			c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("File %s not found.", path))
		} else {
			c.logger.Warn("Failed to load entry", zap.String("path", path), zap.Error(err))
			c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Error loading %s: %v", path, err))
		}
		return storeError("load", path, err)
	}

	c.view.ShowEditor(entry)
	c.transition(LoadSucceeded{Entry: entry})

	switch paths.Classify(path) {
	case paths.ClassAgent:
		// a rejected config is reported by the view; the entry itself loaded fine
		_, _ = c.applyAgentConfig(entry)
	case paths.ClassChat:
		c.view.ShowAgentConfig(nil, nil)
		if c.session != nil {
			if err := c.session.LoadInto(ctx, entry); err != nil {
				c.logger.Warn("Failed to open chat", zap.String("path", path), zap.Error(err))
				c.notify(types.NoticeWarning, NoticeNormal, fmt.Sprintf("Chat %s could not be opened: %v", entry.Name, err))
			}
		}
	default:
		c.view.ShowAgentConfig(nil, nil)
	}
	return nil
}

// Save persists the edit surface to the selected entry
func (c *Controller) Save(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.observe("save", start, err) }()

	if err := c.checkReady("save"); err != nil {
		return err
	}

	s := c.State()
	if !s.HasSelection() {
		c.notify(types.NoticeWarning, NoticeNormal, "No file selected.")
		return newError(KindPrecondition, "save", "", ErrNoSelection)
	}
	if !s.Dirty {
		c.notify(types.NoticeWarning, NoticeNormal, "No changes to save.")
		return newError(KindPrecondition, "save", s.SelectedPath, ErrNotDirty)
	}

	path, text := s.SelectedPath, s.EditorText
	release, err := c.acquire("save", path)
	if err != nil {
		return err
	}
	defer release()

	c.transition(SaveStarted{Path: path})

	saved, err := c.store.Put(ctx, path, text)
	if err != nil {
		c.transition(SaveFailed{Path: path})
		c.logger.Error("Failed to save entry", zap.String("path", path), zap.Error(err))
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to save %s: %v", path, err))
		return storeError("save", path, err)
	}

	if c.State().SelectedPath == path {
		c.view.ShowEditor(saved)
	}
	c.transition(Saved{Path: path, Text: text, Timestamp: saved.Timestamp})
	c.notify(types.NoticeSuccess, NoticeNormal, fmt.Sprintf("File %s saved.", saved.Name))

	return c.afterSave(ctx, saved, text)
}

// afterSave applies the class-dependent follow-up of a committed write
func (c *Controller) afterSave(ctx context.Context, saved *types.Entry, text string) error {
	switch {
	case paths.Classify(saved.Path) == paths.ClassAgent:
		// validation failures are surfaced through the view only
		_, _ = c.applyAgentConfig(saved)

	case paths.Classify(saved.Path) == paths.ClassSource:
		return c.exportSource(ctx, saved, text)

	case paths.NeedsReload(saved.Path):
		c.notify(types.NoticeWarning, NoticeLong, reloadWarning)

	case paths.Classify(saved.Path) == paths.ClassChat:
		if c.session != nil && c.State().SelectedPath == saved.Path {
			if err := c.session.LoadInto(ctx, saved); err != nil {
				c.logger.Warn("Failed to reload chat", zap.String("path", saved.Path), zap.Error(err))
			}
		}
	}
	return nil
}

func (c *Controller) exportSource(ctx context.Context, saved *types.Entry, text string) error {
	if c.exporter == nil {
		c.notify(types.NoticeWarning, NoticeLong, reloadWarning)
		return nil
	}

	location, err := c.exporter.Export(ctx, saved.Name, text)
	if err != nil {
		c.logger.Error("Failed to export source", zap.String("path", saved.Path), zap.Error(err))
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to prepare %s for download: %v", saved.Name, err))
		c.notify(types.NoticeWarning, NoticeLong, reloadWarning)
		return newError(KindExportFailure, "export", saved.Path, err)
	}

	c.notify(types.NoticeInfo, NoticeLong,
		fmt.Sprintf("%s is ready for download at %s. Replace the original file in the js folder and reload the page.", saved.Name, location))
	return nil
}

// PromptCreate asks for a name and creates it in the current directory
func (c *Controller) PromptCreate(ctx context.Context) error {
	if err := c.checkReady("create"); err != nil {
		return err
	}

	dir := c.State().CurrentDirectory
	if dir == paths.Backup {
		c.notify(types.NoticeError, NoticeNormal, "Cannot create files in the backup folder.")
		return newError(KindPrecondition, "create", dir, ErrReadOnly)
	}

	name, err := c.prompter(ctx).PromptName(ctx, fmt.Sprintf("Enter a name for the new file in %s", dir))
	if err != nil {
		return newError(KindInternal, "create", dir, err)
	}
	if strings.TrimSpace(name) == "" {
		return newError(KindCancelled, "create", dir, ErrCancelled)
	}
	return c.Create(ctx, name)
}

// Create adds name to the current directory with class-dependent content,
// then lists the directory again and loads the new entry
func (c *Controller) Create(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { c.observe("create", start, err) }()

	if err := c.checkReady("create"); err != nil {
		return err
	}

	dir := c.State().CurrentDirectory
	if dir == paths.Backup {
		c.notify(types.NoticeError, NoticeNormal, "Cannot create files in the backup folder.")
		return newError(KindPrecondition, "create", dir, ErrReadOnly)
	}

	name = strings.TrimSpace(name)
	if err := paths.ValidateName(name); err != nil {
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Invalid name: %v", err))
		return newError(KindValidation, "create", dir, err)
	}
	if ok, err := c.confirmDiscard(ctx, "create"); !ok {
		return err
	}

	target := paths.Join(dir, name)
	if err := c.createEntry(ctx, dir, name, target); err != nil {
		return err
	}

	if err := c.refresh(ctx, dir); err != nil {
		c.logger.Warn("Listing refresh after create failed", zap.String("dir", dir), zap.Error(err))
	}
	return c.load(ctx, target)
}

func (c *Controller) createEntry(ctx context.Context, dir, name, target string) error {
	release, err := c.acquire("create", target)
	if err != nil {
		return err
	}
	defer release()

	_, err = c.store.Get(ctx, target)
	switch {
	case err == nil:
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("%s already exists.", target))
		return newError(KindPrecondition, "create", target, types.ErrExists)
	case !errors.Is(err, types.ErrNotFound):
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to create %s: %v", target, err))
		return storeError("create", target, err)
	}

	content, err := InitialContent(dir, name)
	if err != nil {
		return newError(KindInternal, "create", target, err)
	}
	if _, err := c.store.Put(ctx, target, content); err != nil {
		c.logger.Error("Failed to create entry", zap.String("path", target), zap.Error(err))
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to create %s: %v", target, err))
		return storeError("create", target, err)
	}

	c.notify(types.NoticeSuccess, NoticeNormal, fmt.Sprintf("File %s created.", name))
	return nil
}

// Delete removes the selected entry after confirmation
func (c *Controller) Delete(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.observe("delete", start, err) }()

	if err := c.checkReady("delete"); err != nil {
		return err
	}

	s := c.State()
	if !s.HasSelection() {
		c.notify(types.NoticeWarning, NoticeNormal, "No file selected.")
		return newError(KindPrecondition, "delete", "", ErrNoSelection)
	}
	path := s.SelectedPath
	dirToRefresh := s.CurrentDirectory

	ok, err := c.confirm(ctx, DeletePrompt(path))
	if err != nil {
		return newError(KindInternal, "delete", path, err)
	}
	if !ok {
		return newError(KindCancelled, "delete", path, ErrCancelled)
	}

	if err := c.deleteEntry(ctx, path); err != nil {
		return err
	}

	if err := c.refresh(ctx, dirToRefresh); err != nil {
		c.logger.Warn("Listing refresh after delete failed", zap.String("dir", dirToRefresh), zap.Error(err))
	}
	return nil
}

func (c *Controller) deleteEntry(ctx context.Context, path string) error {
	release, err := c.acquire("delete", path)
	if err != nil {
		return err
	}
	defer release()

	c.transition(DeleteStarted{Path: path})

	if err := c.store.Delete(ctx, path); err != nil {
		c.transition(DeleteFailed{Path: path})
		c.logger.Error("Failed to delete entry", zap.String("path", path), zap.Error(err))
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to delete %s: %v", path, err))
		return storeError("delete", path, err)
	}

	c.transition(Deleted{Path: path})
	c.notify(types.NoticeSuccess, NoticeNormal, fmt.Sprintf("File %s deleted.", paths.Base(path)))
	return nil
}

// DeletePrompt is the confirmation shown before deleting path
func DeletePrompt(path string) string {
	if paths.Dir(path) == paths.Backup {
		return fmt.Sprintf("Delete %s? Entries in the backup folder are removed without a backup.", paths.Base(path))
	}
	return fmt.Sprintf("Delete %s? A backup copy will be kept in the backup folder.", paths.Base(path))
}

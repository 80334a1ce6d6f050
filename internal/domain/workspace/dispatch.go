package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

const dispatchKey = "dispatch"

// maxChatNameAttempts bounds the suffixes tried for a new chat name
const maxChatNameAttempts = 100

// NoConfigMessage is shown when no agent configuration was ever validated
const NoConfigMessage = "Please load an agent configuration first (e.g., /agents/example-agent.json)."

// Send dispatches the current edit surface as a chat message
func (c *Controller) Send(ctx context.Context) error {
	return c.Dispatch(ctx, c.State().EditorText)
}

// Dispatch sends text to the agent within the selected chat, creating a chat
// entry first when none is selected. The chat entry is committed before the
// message leaves.
func (c *Controller) Dispatch(ctx context.Context, text string) (err error) {
	start := time.Now()
	defer func() { c.observe("dispatch", start, err) }()

	message := strings.TrimSpace(text)
	if message == "" {
		if err := c.checkReady("dispatch"); err != nil {
			return err
		}
		c.notify(types.NoticeWarning, NoticeNormal, "Enter a message to send.")
		return newError(KindPrecondition, "dispatch", "", ErrEmptyMessage)
	}

	release, err := c.acquire("dispatch", dispatchKey)
	if err != nil {
		return err
	}
	defer release()
	defer c.transition(Settled{})

	chatPath := c.State().SelectedPath
	if !paths.IsChatEntry(chatPath) {
		chatPath, err = c.createChat(ctx)
		if err != nil {
			c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to create a chat: %v", err))
			return err
		}
	}

	// the transcript is rewritten when the reply arrives
	releaseChat, err := c.acquire("dispatch", chatPath)
	if err != nil {
		return err
	}
	defer releaseChat()

	credential := c.readCredential(ctx)

	if c.session == nil {
		return newError(KindPrecondition, "dispatch", chatPath, ErrNoAgentConfig)
	}
	if c.session.ActiveConfig() == nil {
		last := c.State().LastAgentConfig
		if last == nil {
			c.notify(types.NoticeError, NoticeNormal, NoConfigMessage)
			return newError(KindPrecondition, "dispatch", chatPath, ErrNoAgentConfig)
		}
		c.session.SetActiveConfig(last)
		c.view.ShowAgentConfig(last, nil)
		c.notify(types.NoticeInfo, NoticeNormal,
			fmt.Sprintf("Using the last loaded agent configuration: %s", last.DisplayName()))
	}

	c.transition(DispatchStarted{})

	if err := c.session.Send(ctx, message, credential, chatPath); err != nil {
		c.logger.Error("Failed to send message", zap.String("chat", chatPath), zap.Error(err))
		c.notify(types.NoticeError, NoticeNormal, fmt.Sprintf("Failed to send message: %v", err))
		return newError(KindSessionFailure, "dispatch", chatPath, err)
	}

	c.transition(DispatchCompleted{ChatPath: chatPath})
	return nil
}

// createChat commits a new transcript under the chats directory and loads it
func (c *Controller) createChat(ctx context.Context) (string, error) {
	c.notify(types.NoticeInfo, NoticeShort, "Creating a new chat...")

	if err := c.store.EnsureDirectory(ctx, paths.Chats); err != nil {
		c.logger.Warn("Failed to ensure chats directory", zap.Error(err))
	}

	path, err := c.freeChatPath(ctx)
	if err != nil {
		return "", err
	}
	name := paths.Base(path)

	content, err := types.EncodeJSON(NewChatDocument())
	if err != nil {
		return "", newError(KindInternal, "dispatch", path, err)
	}
	if _, err := c.store.Put(ctx, path, content); err != nil {
		return "", storeError("dispatch", path, err)
	}
	c.notify(types.NoticeSuccess, NoticeNormal, fmt.Sprintf("Chat %s created.", name))

	if dir := c.State().CurrentDirectory; dir == paths.Root || dir == paths.Chats {
		if err := c.refresh(ctx, dir); err != nil {
			c.logger.Warn("Listing refresh after chat creation failed", zap.String("dir", dir), zap.Error(err))
		}
	}

	// the edit surface held the message, so there is nothing to discard
	if err := c.load(ctx, path); err != nil {
		c.logger.Warn("Failed to open new chat", zap.String("path", path), zap.Error(err))
	}
	return path, nil
}

// freeChatPath names a chat after the current time, adding a numeric
// suffix while the name is taken
func (c *Controller) freeChatPath(ctx context.Context) (string, error) {
	base := id.ChatFileName(c.now())
	ext := paths.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; i <= maxChatNameAttempts; i++ {
		name := base
		if i > 1 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := paths.Join(paths.Chats, name)

		_, err := c.store.Get(ctx, path)
		switch {
		case errors.Is(err, types.ErrNotFound):
			return path, nil
		case err != nil:
			return "", storeError("dispatch", path, err)
		}
	}
	return "", newError(KindPrecondition, "dispatch", paths.Chats, types.ErrExists)
}

// readCredential returns the model credential or an empty string.
// A missing secrets entry is expected; other failures are only logged.
func (c *Controller) readCredential(ctx context.Context) string {
	entry, err := c.store.Get(ctx, paths.SecretsFile)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.logger.Debug("No secrets entry", zap.String("path", paths.SecretsFile))
		} else {
			c.logger.Warn("Failed to read secrets", zap.String("path", paths.SecretsFile), zap.Error(err))
		}
		return ""
	}

	credential, err := types.ExtractCredential(entry.Text())
	if err != nil {
		c.logger.Warn("Failed to parse secrets", zap.String("path", paths.SecretsFile), zap.Error(err))
		return ""
	}
	return credential
}

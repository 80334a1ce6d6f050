package http

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/utils"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// run executes op with a request-scoped prompter and writes the outcome
func (h *Handlers) run(c *gin.Context, p *prompter, op func(ctx context.Context) error) {
	ctx := c.Request.Context()
	if p != nil {
		ctx = workspace.WithPrompter(ctx, p)
	}
	if err := op(ctx); err != nil {
		h.fail(c, err, p)
		return
	}
	h.ok(c)
}

func nodeID(c *gin.Context) (workspace.NodeID, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid node id %q", c.Param("id"))
	}
	return workspace.NodeID(id), nil
}

// Navigate lists a directory as the new current directory
func (h *Handlers) Navigate(c *gin.Context) {
	var req types.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePath(req.Dir, "dir"); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, newPrompter(req.Confirm, ""), func(ctx context.Context) error {
		return h.workspace.Navigate(ctx, req.Dir)
	})
}

// Expand lists the children of a tree node
func (h *Handlers) Expand(c *gin.Context) {
	id, err := nodeID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, nil, func(ctx context.Context) error {
		return h.workspace.Expand(ctx, id)
	})
}

// Collapse hides the children of a tree node
func (h *Handlers) Collapse(c *gin.Context) {
	id, err := nodeID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, nil, func(ctx context.Context) error {
		return h.workspace.Collapse(ctx, id)
	})
}

// Activate opens a tree node: directories are navigated, files loaded
func (h *Handlers) Activate(c *gin.Context) {
	id, err := nodeID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req types.ConfirmRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, newPrompter(req.Confirm, ""), func(ctx context.Context) error {
		return h.workspace.Activate(ctx, id)
	})
}

// Load selects an entry and shows it in the editor
func (h *Handlers) Load(c *gin.Context) {
	var req types.LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePath(req.Path, "path"); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, newPrompter(req.Confirm, ""), func(ctx context.Context) error {
		return h.workspace.Load(ctx, req.Path)
	})
}

// Edit replaces the edit-surface text
func (h *Handlers) Edit(c *gin.Context) {
	var req types.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateText(req.Text, "text", utils.MaxEntrySize); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, nil, func(ctx context.Context) error {
		return h.workspace.Edit(ctx, req.Text)
	})
}

// Save writes the edit surface to the selected entry
func (h *Handlers) Save(c *gin.Context) {
	h.run(c, nil, h.workspace.Save)
}

// Create adds a named entry to the current directory
func (h *Handlers) Create(c *gin.Context) {
	var req types.CreateRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.Name, "name", 0, utils.MaxNameLength, false); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, newPrompter(req.Confirm, req.Name), h.workspace.PromptCreate)
}

// Delete removes the selected entry
func (h *Handlers) Delete(c *gin.Context) {
	var req types.ConfirmRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, newPrompter(req.Confirm, ""), h.workspace.Delete)
}

// Send dispatches a chat message, or the editor text when none is given
func (h *Handlers) Send(c *gin.Context) {
	var req types.SendRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateMessage(req.Text); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateCredential(req.Credential); err != nil {
		badRequest(c, err)
		return
	}

	h.run(c, nil, func(ctx context.Context) error {
		if req.Credential != "" {
			ctx = session.WithCredential(ctx, req.Credential)
		}
		if req.Text == "" {
			return h.workspace.Send(ctx)
		}
		return h.workspace.Dispatch(ctx, req.Text)
	})
}

package workspace

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Edit records a change of the edit surface.
// Edits to a chat entry are message input and never make it dirty.
func (c *Controller) Edit(ctx context.Context, text string) error {
	if err := c.checkReady("edit"); err != nil {
		return err
	}
	c.transition(Edited{Text: text})
	return nil
}

// Buttons returns the current affordance enablement
func (c *Controller) Buttons() types.ButtonStates {
	return c.State().Buttons()
}

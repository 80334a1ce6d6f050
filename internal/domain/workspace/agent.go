package workspace

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// applyAgentConfig validates content as an agent configuration and installs it.
// A rejected document clears the active configuration but keeps the
// last validated one as the dispatch fallback.
func (c *Controller) applyAgentConfig(entry *types.Entry) (*types.AgentConfig, error) {
	cfg, err := types.ParseAgentConfig(entry.Text())
	if err != nil {
		c.logger.Warn("Rejected agent configuration",
			zap.String("path", entry.Path),
			zap.Error(err))
		if c.session != nil {
			c.session.SetActiveConfig(nil)
		}
		c.view.ShowAgentConfig(nil, err)
		c.notify(types.NoticeError, NoticeNormal,
			fmt.Sprintf("Agent configuration error in %s: %v", entry.Name, err))
		return nil, newError(KindValidation, "apply_config", entry.Path, err)
	}

	if c.session != nil {
		c.session.SetActiveConfig(cfg)
	}
	c.transition(ConfigAccepted{Config: cfg})
	c.view.ShowAgentConfig(cfg, nil)
	c.notify(types.NoticeSuccess, NoticeNormal,
		fmt.Sprintf("Agent configuration %q loaded.", cfg.DisplayName()))
	return cfg, nil
}

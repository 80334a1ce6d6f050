package workspace

import (
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// DefaultModel seeds new agent configurations
const DefaultModel = "anthropic/claude-3-haiku"

// InitialContent returns the template for a new entry named name in dir
func InitialContent(dir, name string) (string, error) {
	switch {
	case paths.IsJSON(name):
		return types.EncodeJSON(jsonTemplate(dir))
	case paths.IsText(name):
		return "New file: " + name + "\n", nil
	default:
		return "", nil
	}
}

func jsonTemplate(dir string) interface{} {
	switch dir {
	case paths.Chats:
		return NewChatDocument()
	case paths.Agents:
		return types.AgentConfig{
			ID:             id.NewAgentID().String(),
			Name:           "New Agent",
			Configurations: map[string]interface{}{"model": DefaultModel},
		}
	case paths.Secrets:
		return types.SecretRecord{
			ID:      id.NewSecretID().String(),
			Service: "New Service",
			Data:    map[string]interface{}{},
		}
	default:
		return map[string]interface{}{}
	}
}

// NewChatDocument returns an empty transcript with a fresh identifier
func NewChatDocument() types.ChatSession {
	return types.ChatSession{
		ID:       id.NewChatID().String(),
		Messages: []types.Message{},
	}
}

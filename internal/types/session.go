package types

import (
	"fmt"
	"time"
)

// AgentConfig selects a model and its parameters for chat sessions
type AgentConfig struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Configurations map[string]interface{} `json:"configurations"`
}

// Model returns the configured model identifier
func (c *AgentConfig) Model() string {
	if c == nil || c.Configurations == nil {
		return ""
	}
	model, _ := c.Configurations["model"].(string)
	return model
}

// DisplayName returns the config name or a fallback
func (c *AgentConfig) DisplayName() string {
	if c == nil || c.Name == "" {
		return "Unnamed"
	}
	return c.Name
}

// ChatSession is the transcript persisted under the chats directory
type ChatSession struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// Message represents a chat message
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UnixMilli()}
}

// SecretRecord is a credential document under the secrets directory
type SecretRecord struct {
	ID      string                 `json:"id"`
	Service string                 `json:"service"`
	Data    map[string]interface{} `json:"data"`
}

// CredentialKey is the secret key consumed by chat dispatch
const CredentialKey = "vsegpt"

// ParseAgentConfig decodes and validates an agent configuration.
// The document must be a JSON object with a non-empty configurations.model.
func ParseAgentConfig(content string) (*AgentConfig, error) {
	var raw interface{}
	if err := DecodeJSON([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, ok := raw.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("invalid agent structure: expected object")
	}

	var cfg AgentConfig
	if err := DecodeJSON([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("invalid agent structure: %w", err)
	}
	if cfg.Model() == "" {
		return nil, fmt.Errorf("invalid agent structure or missing model")
	}
	return &cfg, nil
}

// ParseChatSession decodes a chat transcript
func ParseChatSession(content string) (*ChatSession, error) {
	var chat ChatSession
	if err := DecodeJSON([]byte(content), &chat); err != nil {
		return nil, fmt.Errorf("invalid chat transcript: %w", err)
	}
	if chat.Messages == nil {
		chat.Messages = []Message{}
	}
	return &chat, nil
}

// ExtractCredential pulls the dispatch credential out of a secrets document.
// Both {"data": {"vsegpt": ...}} and a top-level {"vsegpt": ...} are accepted.
func ExtractCredential(content string) (string, error) {
	var doc map[string]interface{}
	if err := DecodeJSON([]byte(content), &doc); err != nil {
		return "", fmt.Errorf("invalid secrets document: %w", err)
	}
	if data, ok := doc["data"].(map[string]interface{}); ok {
		if key, ok := data[CredentialKey].(string); ok && key != "" {
			return key, nil
		}
	}
	key, _ := doc[CredentialKey].(string)
	return key, nil
}

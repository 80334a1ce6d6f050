package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		model   string
		wantErr bool
	}{
		{"valid", `{"id":"a1","name":"Helper","configurations":{"model":"openai/gpt-4o","temperature":0.2}}`, "openai/gpt-4o", false},
		{"missing model", `{"configurations":{}}`, "", true},
		{"missing configurations", `{"name":"x"}`, "", true},
		{"null document", `null`, "", true},
		{"array document", `[1,2]`, "", true},
		{"not json", `{nope`, "", true},
		{"empty model", `{"configurations":{"model":""}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseAgentConfig(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, cfg.Model())
		})
	}
}

func TestParseChatSession(t *testing.T) {
	chat, err := ParseChatSession(`{"id":"c1"}`)
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)
	assert.NotNil(t, chat.Messages)
	assert.Empty(t, chat.Messages)

	_, err = ParseChatSession(`not json`)
	assert.Error(t, err)
}

func TestExtractCredential(t *testing.T) {
	key, err := ExtractCredential(`{"id":"s","service":"vsegpt","data":{"vsegpt":"sk-nested"}}`)
	require.NoError(t, err)
	assert.Equal(t, "sk-nested", key)

	key, err = ExtractCredential(`{"vsegpt":"sk-top"}`)
	require.NoError(t, err)
	assert.Equal(t, "sk-top", key)

	key, err = ExtractCredential(`{"data":{}}`)
	require.NoError(t, err)
	assert.Empty(t, key)

	_, err = ExtractCredential(`{`)
	assert.Error(t, err)
}

func TestEncodeJSONIndents(t *testing.T) {
	out, err := EncodeJSON(ChatSession{ID: "x", Messages: []Message{}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": \"x\",\n  \"messages\": []\n}", out)
}

func TestAgentConfigAccessors(t *testing.T) {
	var nilCfg *AgentConfig
	assert.Equal(t, "", nilCfg.Model())
	assert.Equal(t, "Unnamed", nilCfg.DisplayName())

	cfg := &AgentConfig{Name: "Bot", Configurations: map[string]interface{}{"model": 3}}
	assert.Equal(t, "", cfg.Model())
	assert.Equal(t, "Bot", cfg.DisplayName())
}

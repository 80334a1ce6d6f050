package types

// NavigateRequest changes the listed directory
type NavigateRequest struct {
	Dir     string `json:"dir" binding:"required"`
	Confirm bool   `json:"confirm"`
}

// LoadRequest selects an entry; Confirm answers the discard prompt
type LoadRequest struct {
	Path    string `json:"path" binding:"required"`
	Confirm bool   `json:"confirm"`
}

// EditRequest carries the edit-surface text
type EditRequest struct {
	Text string `json:"text"`
}

// CreateRequest names a new entry in the current directory;
// Confirm answers the discard prompt
type CreateRequest struct {
	Name    string `json:"name"`
	Confirm bool   `json:"confirm"`
}

// ConfirmRequest answers a confirmation for body-less operations
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}


// SendRequest dispatches a chat message; empty Text uses the editor text
type SendRequest struct {
	Text       string `json:"text"`
	Credential string `json:"credential,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

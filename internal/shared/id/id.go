// Package id provides ULID generation for workspace documents.
//
// Generated identifiers are lexicographically sortable and carry a short
// type prefix (chat_*, agent_*, secret_*, req_*) so they read well in logs
// and in the JSON documents seeded into the store.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ChatID identifies a chat transcript
type ChatID string

// AgentID identifies an agent configuration
type AgentID string

// SecretID identifies a secret record
type SecretID string

// RequestID identifies an API request
type RequestID string

const (
	ChatPrefix    = "chat"
	AgentPrefix   = "agent"
	SecretPrefix  = "secret"
	RequestPrefix = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewChatID generates a new chat transcript ID
func NewChatID() ChatID {
	return ChatID(Default().GenerateWithPrefix(ChatPrefix))
}

// NewAgentID generates a new agent configuration ID
func NewAgentID() AgentID {
	return AgentID(Default().GenerateWithPrefix(AgentPrefix))
}

// NewSecretID generates a new secret record ID
func NewSecretID() SecretID {
	return SecretID(Default().GenerateWithPrefix(SecretPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id ChatID) String() string    { return string(id) }
func (id AgentID) String() string   { return string(id) }
func (id SecretID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Timestamp extracts the timestamp from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

// ChatFileName derives a unique transcript file name from t.
// Colons and dots of the RFC 3339 timestamp are replaced so the name is
// safe in every client.
func ChatFileName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "chat_" + stamp + ".json"
}

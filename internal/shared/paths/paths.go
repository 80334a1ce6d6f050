package paths

import (
	"fmt"
	"path"
	"strings"
)

// Fixed directories
const (
	Root    = "/"
	Chats   = "/chats/"
	Agents  = "/agents/"
	Secrets = "/secrets/"
	Source  = "/js/"
	Backup  = "/backup/"
)

// SecretsFile holds the credential read on every chat dispatch
const SecretsFile = "/secrets/api_keys.json"

// ReloadDirs hold code that only takes effect after a client reload
var ReloadDirs = []string{"/core/", "/api/", "/utils/"}

// Class is the directory-and-extension classification of an entry
type Class int

const (
	ClassPlain Class = iota
	ClassAgent
	ClassChat
	ClassSecret
	ClassSource
	ClassBackup
)

// String returns the string representation of the class
func (c Class) String() string {
	switch c {
	case ClassAgent:
		return "agent"
	case ClassChat:
		return "chat"
	case ClassSecret:
		return "secret"
	case ClassSource:
		return "source"
	case ClassBackup:
		return "backup"
	default:
		return "plain"
	}
}

// IsDir reports whether p names a directory
func IsDir(p string) bool {
	return strings.HasSuffix(p, "/")
}

// Dir returns the parent directory of p, always with a trailing slash
func Dir(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return Root
	}
	return trimmed[:idx+1]
}

// Base returns the display name of p without any trailing slash
func Base(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	if trimmed == "" {
		return Root
	}
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

// Join appends name to dir
func Join(dir, name string) string {
	if !IsDir(dir) {
		dir += "/"
	}
	return dir + strings.TrimPrefix(name, "/")
}

// AsDir normalizes p into a directory key
func AsDir(p string) string {
	if p == "" {
		return Root
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return Root
	}
	return cleaned + "/"
}

// Ext returns the lower-cased extension of p including the dot
func Ext(p string) string {
	return strings.ToLower(path.Ext(Base(p)))
}

// IsJSON reports whether p names a JSON document
func IsJSON(p string) bool {
	return !IsDir(p) && Ext(p) == ".json"
}

// IsSource reports whether p names a client source file
func IsSource(p string) bool {
	return !IsDir(p) && Ext(p) == ".js"
}

// IsText reports whether p names a plain-text or markdown document
func IsText(p string) bool {
	ext := Ext(p)
	return !IsDir(p) && (ext == ".txt" || ext == ".md")
}

// InChats reports whether p lives directly under the chats directory.
// Edits to any such entry are chat input rather than document changes.
func InChats(p string) bool {
	return p != "" && Dir(p) == Chats
}

// IsChatEntry reports whether p is a chat transcript
func IsChatEntry(p string) bool {
	return InChats(p) && IsJSON(p)
}

// NeedsReload reports whether saving p requires a client reload without export
func NeedsReload(p string) bool {
	if !IsSource(p) {
		return false
	}
	dir := Dir(p)
	for _, d := range ReloadDirs {
		if d == dir {
			return true
		}
	}
	return false
}

// Classify maps an entry path to its class
func Classify(p string) Class {
	dir := Dir(p)
	switch {
	case dir == Agents && IsJSON(p):
		return ClassAgent
	case dir == Chats && IsJSON(p):
		return ClassChat
	case dir == Secrets && IsJSON(p):
		return ClassSecret
	case dir == Source && IsSource(p):
		return ClassSource
	case dir == Backup:
		return ClassBackup
	default:
		return ClassPlain
	}
}

// ValidateName checks that name is a single path element
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("name cannot contain '/'")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be a relative path component")
	}
	return nil
}

// StandardDirectories returns the directories that always exist
func StandardDirectories() []string {
	return []string{Agents, Chats, Secrets, Source, Backup}
}

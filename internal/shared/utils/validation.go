package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Size limits (in bytes)
const (
	MaxEntrySize   = 1 * 1024 * 1024 // 1MB - editor text accepted per request
	MaxMessageSize = 16 * 1024       // 16KB - single chat message
)

// String length limits
const (
	MaxPathLength       = 1024
	MaxNameLength       = 256
	MaxCredentialLength = 512
	MaxPatternLength    = 256
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidatePath validates an absolute workspace path.
// Directory paths keep their trailing slash; relative segments are rejected.
func ValidatePath(path, fieldName string) error {
	if err := ValidateString(path, fieldName, 1, MaxPathLength, true); err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s must be absolute", fieldName)
	}
	if path == "/" {
		return nil
	}

	segments := strings.Split(strings.TrimSuffix(path[1:], "/"), "/")
	for _, seg := range segments {
		switch seg {
		case "":
			return fmt.Errorf("%s contains an empty segment", fieldName)
		case ".", "..":
			return fmt.Errorf("%s contains a relative segment", fieldName)
		}
	}
	return nil
}

// ValidateDirectory validates a directory path, which must end in '/'
func ValidateDirectory(dir, fieldName string) error {
	if err := ValidatePath(dir, fieldName); err != nil {
		return err
	}
	if !strings.HasSuffix(dir, "/") {
		return fmt.Errorf("%s must end with '/'", fieldName)
	}
	return nil
}

// ValidateText bounds the byte size of free text such as editor content
func ValidateText(text, fieldName string, maxBytes int) error {
	if len(text) > maxBytes {
		return fmt.Errorf("%s size %d bytes exceeds maximum %d bytes", fieldName, len(text), maxBytes)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%s is not valid UTF-8", fieldName)
	}
	return nil
}

// ValidateMessage validates an optional chat message.
// Empty means the editor text is sent instead.
func ValidateMessage(message string) error {
	return ValidateText(message, "message", MaxMessageSize)
}

// ValidateCredential validates an optional API credential
func ValidateCredential(credential string) error {
	if err := ValidateString(credential, "credential", 0, MaxCredentialLength, false); err != nil {
		return err
	}
	if strings.ContainsAny(credential, " \t\r\n") {
		return fmt.Errorf("credential contains whitespace")
	}
	return nil
}

// ValidatePattern validates a glob over workspace paths
func ValidatePattern(pattern string) error {
	if err := ValidateString(pattern, "pattern", 1, MaxPatternLength, true); err != nil {
		return err
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("pattern %q is malformed", pattern)
	}
	return nil
}

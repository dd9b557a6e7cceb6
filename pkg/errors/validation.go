package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds ids accepted from external payloads.
const maxNodeIDLength = 256

// ValidateNodeID validates a node id received from an external payload.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
//
// The "->" sequence is reserved because connection ids are built as
// "<from>-><to>".
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "node id cannot start or end with whitespace")
	}

	if strings.Contains(id, "->") {
		return New(ErrCodeInvalidInput, "node id contains reserved sequence %q", "->")
	}

	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}

package errors

import (
	"regexp"
	"unicode"
)

// sessionIDRegex matches the URL-safe base64 alphabet used for session IDs.
var sessionIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+={0,2}$`)

// maxSessionIDLength bounds session IDs read from cookies and headers.
const maxSessionIDLength = 128

// ValidateSessionID checks that a session ID read from a client looks like one
// we could have issued. It rejects empty, oversized and non-base64 values
// before they reach the session registry.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if len(id) > maxSessionIDLength {
		return New(ErrCodeInvalidInput, "session id too long (max %d characters)", maxSessionIDLength)
	}
	if !sessionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "session id contains invalid characters")
	}
	return nil
}

// ValidateOutputPath validates a file path supplied for rendered output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateURL validates a page or asset URL for capture.
// It ensures the URL parses and uses a scheme the capture side can load.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "URL does not parse")
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return New(ErrCodeInvalidURL, "URL must use http, https or file scheme")
	}
	if u.Scheme != "file" && u.Host == "" {
		return New(ErrCodeInvalidURL, "URL has no host")
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	return nil
}

// stateNameRegex matches observation state tags ("default", "menu-open", "scroll_2").
var stateNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateStateName validates an observation state tag.
func ValidateStateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "state name cannot be empty")
	}
	if !stateNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid state name %q (letters, digits, '.', '_', '-'; max 64)", name)
	}
	return nil
}

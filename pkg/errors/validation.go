package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety before it is
// interpolated into server URLs. It rejects names that could be used for
// path traversal or injection.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
//
// Ecosystem-specific shape checks are the extractor's concern; this is
// purely a safety gate.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "package name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateRepositoryKey validates a repository key before it is used in
// server URLs. Keys are single path segments.
func ValidateRepositoryKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "repository key cannot be empty")
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidInput, "repository key cannot contain path separators")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "repository key contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a server URL string.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "server URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "server URL must use http or https scheme")
	}

	return nil
}

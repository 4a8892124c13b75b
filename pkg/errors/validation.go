package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// assetNameRegex matches asset names: slash-separated segments of
// letters, digits, dots, dashes and underscores.
var assetNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*(/[A-Za-z0-9_][A-Za-z0-9._-]*)*$`)

// ValidateAssetName validates an asset name for safety and correctness.
// Asset names become file paths, Redis keys and object keys, so they
// must not be usable for path traversal.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No leading slash or backslashes
//   - Maximum length of 256 characters
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "asset name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "asset name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "asset name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "asset name contains invalid characters: %q", pattern)
		}
	}

	if !assetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid asset name: %q", name)
	}

	return nil
}

// ValidatePath validates a local file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
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

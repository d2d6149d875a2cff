package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateNodeName checks a file/folder name before it enters the tree.
// Uniqueness among siblings is the tree guard's job; this only rejects names
// that could never be valid anywhere.
func ValidateNodeName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("name too long (max 255 characters)")
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("name contains invalid UTF-8 characters")
	}

	// Path separators would corrupt derived paths.
	invalidChars := []string{"/", "\\", "\x00"}
	for _, char := range invalidChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("name contains invalid character: %q", char)
		}
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be a directory reference")
	}

	return nil
}

// ValidateProjectName checks a project name on create/rename.
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("project name too long (max 255 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("project name contains invalid UTF-8 characters")
	}
	return nil
}

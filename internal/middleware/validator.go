package middleware

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

const maxFileNameLen = 255

// SanitizeFileName strips directories, null bytes and control characters from
// an uploaded file name and caps its length. The result is what gets shown in
// the saved list.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		name = ""
	}

	var result strings.Builder
	for _, r := range name {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}

	out := strings.TrimSpace(result.String())
	if len(out) > maxFileNameLen {
		out = strings.ToValidUTF8(out[:maxFileNameLen], "")
	}
	return out
}

// ValidateEntryID checks a saved entry id is a UUID.
func ValidateEntryID(id string) error {
	if id == "" {
		return fmt.Errorf("entry id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid entry id format")
	}
	return nil
}

// ParseIndex parses a 0-based saved list index.
func ParseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	if i < 0 {
		return 0, fmt.Errorf("index cannot be negative")
	}
	return i, nil
}

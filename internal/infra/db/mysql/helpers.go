package mysql

import "strings"

const defaultKey = "analysisResults"

// keyOrDefault returns the default store key when the input is empty/whitespace
func keyOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return defaultKey
	}
	return s
}

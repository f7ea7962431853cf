package core

import "strings"

// CleanString trims s and collapses inner runs of whitespace (tabs and newlines included) into one space.
func CleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

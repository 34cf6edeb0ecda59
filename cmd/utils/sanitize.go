package utils

import "strings"

const maxContentLength = 10000

// SanitizeInput trims whitespace, strips angle brackets and caps the length
// of user-supplied text content.
func SanitizeInput(input string) string {
	s := strings.TrimSpace(input)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if len(s) > maxContentLength {
		s = s[:maxContentLength]
	}
	return s
}

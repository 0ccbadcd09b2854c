// Phone number normalization for conversation keys
package service

import "strings"

// NormalizePhone canonicalizes a webhook sender id into the conversation key.
// All non-digit characters are stripped; numbers without the Brazilian
// country prefix get "55" prepended when they are short enough to be a local
// number. The function is idempotent and has no error path: malformed input
// degenerates to whatever digits remain.
func NormalizePhone(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if !strings.HasPrefix(cleaned, "55") && len(cleaned) <= 11 {
		cleaned = "55" + cleaned
	}
	return cleaned
}

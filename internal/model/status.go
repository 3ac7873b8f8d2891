package model

import "strings"

// normalizeStatus lower-cases and trims raw input, applies the synonym
// table, then validates against the closed vocabulary. Normalization is
// idempotent: canonical values pass through unchanged.
func normalizeStatus(raw string, vocab map[string]bool, synonyms map[string]string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := synonyms[s]; ok {
		s = mapped
	}
	if !vocab[s] {
		return "", false
	}
	return s, true
}

package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeTitle lowercases and trims an event title for fingerprinting
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// GenerateContentHash derives the stable content fingerprint hash for an
// event from its normalized title, date and start time. Identical
// normalized inputs always yield the same hash; changing any field changes
// it. A missing time is hashed as an empty component.
//
// Returns an empty string when hashing fails; callers must treat "" as
// "no fingerprint available", never as a valid hash.
func GenerateContentHash(title string, eventDate string, eventTime string) string {
	raw := strings.Join([]string{NormalizeTitle(title), eventDate, eventTime}, "|")

	h := sha256.New()
	if _, err := h.Write([]byte(raw)); err != nil {
		return ""
	}

	return hex.EncodeToString(h.Sum(nil))
}

package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// HashKey creates a SHA256 hash of a string.
// This is useful for creating consistent, safe keys for Redis and job ids.
func HashKey(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// SectionURL builds the locator of one section page: {base}{entity}/#{section}.
func SectionURL(base, entity, section string) string {
	return base + url.PathEscape(entity) + "/#" + section
}

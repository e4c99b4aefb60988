// Package filekey implements the object key convention used for uploaded
// documents:
//
//	documents/{ownerID}/{unixMilli}_{token}_{sanitizedName}
//
// The owner segment embeds an authorization fact directly into the key, so
// ownership can be checked with a string comparison instead of a database
// round trip. Keys are built once at upload time from the verified caller
// identity and are immutable afterwards.
package filekey

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix is the common first segment of all document keys.
const Prefix = "documents"

// Build constructs a key for a new object owned by ownerID.
// The original file name is sanitized before being embedded.
func Build(ownerID, originalName string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%s/%d_%s_%s", Prefix, ownerID, now.UnixMilli(), token, SanitizeName(originalName))
}

// Owner returns the owner segment of a key. ok is false when the key does
// not follow the convention; callers must then fall back to the relational
// ownership record, never auto-pass or auto-fail.
func Owner(key string) (owner string, ok bool) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || parts[0] != Prefix || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1], true
}

// SanitizeName maps a user-supplied file name onto a safe character set.
// Anything outside [A-Za-z0-9._-] becomes an underscore; an empty result
// falls back to "file".
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

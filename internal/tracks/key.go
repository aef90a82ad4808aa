package tracks

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Content-type prefixes keep keys human-diagnosable when browsing the bucket.
const (
	audioKeyPrefix = "tracks/"
	coverKeyPrefix = "covers/"
	debugKeyPrefix = "debug/"
)

// sanitizeFilename collapses whitespace to underscores and drops everything
// outside alphanumerics, underscore, hyphen and dot.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// buildKey combines a coarse timestamp with the sanitized original filename
// under the given prefix. Unique with overwhelming probability, not
// guaranteed: a collision overwrites the prior object, which is accepted.
func buildKey(prefix, filename string, now time.Time) string {
	return fmt.Sprintf("%s%d_%s", prefix, now.UnixMilli(), sanitizeFilename(filename))
}

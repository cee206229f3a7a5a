package querybuilder

import (
	"crypto/rand"
	"fmt"
)

const aliasAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newAlias returns a short random suffix for a builder-introduced SQL alias,
// so that composed sub-builders never collide on variable names.
func newAlias(prefix string) string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read on the standard reader does not fail in
		// practice; fall back to a fixed suffix rather than propagating
		// an error through every alias call site.
		return prefix + "_000000"
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = aliasAlphabet[int(b)%len(aliasAlphabet)]
	}
	return fmt.Sprintf("%s_%s", prefix, suffix)
}

package reasoning

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/agentcache/agentcache-go/pkg/types"
)

// contextHashLength is the number of leading hex characters of the SHA-256
// digest used as a context fingerprint. 16 hex characters (64 bits) keeps
// keys short while making accidental collisions negligible at cache scale.
const contextHashLength = 16

// HashContext computes the stable fingerprint for a context: the leading
// 16 hex characters of the SHA-256 digest of its canonical JSON form.
// Identical context content hashes identically regardless of the original
// key insertion order, and non-serializable values are stringified rather
// than rejected, so hashing never fails.
func HashContext(ctx types.Context) string {
	sum := sha256.Sum256([]byte(ctx.CanonicalJSON()))
	return hex.EncodeToString(sum[:])[:contextHashLength]
}

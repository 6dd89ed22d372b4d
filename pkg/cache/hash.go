package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a namespaced key "<stage>:<sha256 of the JSON-encoded
// parts>". The stage prefix ("records", "artifact") keeps the two entry
// kinds from colliding even when their inputs hash alike.
func hashKey(stage string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", stage, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 digest of data as a 64-char hex string. Used to
// fingerprint raw input streams and merged record sets before keying.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

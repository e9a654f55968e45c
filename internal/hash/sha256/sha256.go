// Package sha256 provides content digests used to compare downloaded images.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hasher computes hex-encoded SHA-256 digests.
type Hasher struct{}

// New returns a Hasher.
func New() Hasher {
	return Hasher{}
}

// Hash returns the hex digest of data.
func (Hasher) Hash(data []byte) (string, error) {
	if data == nil {
		return "", fmt.Errorf("data is required")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

package meta

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the digest width in bytes (256 bits), satisfying the
// "≥256 bits" content-address requirement.
const HashSize = blake2b.Size256

// Hash is a fixed-width content digest, used both as a block's content
// address and as the key walked on the placement ring.
type Hash [HashSize]byte

// Digest computes the content hash of b.
func Digest(b []byte) Hash {
	return Hash(blake2b.Sum256(b))
}

// String renders the hash as lowercase hex, e.g. for logging or as a
// block-store file name.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero value (no hash set).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalJSON renders the hash as a hex string rather than a JSON
// array of bytes.
func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON parses a hex string produced by MarshalJSON.
func (h *Hash) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("meta: invalid hash JSON %s", b)
	}
	parsed, err := ParseHash(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash decodes a hex-encoded hash of the expected width.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("meta: invalid hash %q: %w", s, err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("meta: invalid hash length %d, want %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

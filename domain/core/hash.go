package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell reports apart
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeTableHash fingerprints a header plus column-major cells.
// Unit and record separators keep "a","bc" distinct from "ab","c".
func ComputeTableHash(headers []string, columns [][]string) Hash {
	var data strings.Builder
	for i, h := range headers {
		data.WriteString(h)
		data.WriteByte(0x1f)
		if i < len(columns) {
			for _, cell := range columns[i] {
				data.WriteString(cell)
				data.WriteByte(0x1f)
			}
		}
		data.WriteByte(0x1e)
	}
	return NewHash([]byte(data.String()))
}

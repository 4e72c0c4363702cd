package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the length of release keys and pickup codes.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a random numeric secret of CodeLength digits,
// zero-padded. Used for both release keys and pickup codes.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("keygen: %w", err)
	}
	return fmt.Sprintf("%06d", n), nil
}

// looksLikeCode reports whether the presented string has the shape of a
// generated secret. Anything else is rejected before touching storage.
func looksLikeCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

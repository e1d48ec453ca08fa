package code

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/zycare/auth-api/internal/domain"
)

var codeSpace = big.NewInt(1_000_000)

// New generates a 6-digit one-time code, uniformly at random and
// zero-padded, using crypto/rand.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", domain.CodeLength, n.Int64()), nil
}

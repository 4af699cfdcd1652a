package auth

import (
	"crypto/rand"
	"encoding/hex"

	"accounts/internal/domain/service"

	"github.com/pkg/errors"
)

// codeBytes gives 256 bits of entropy, 64 hex characters.
const codeBytes = 32

type randomCodeGenerator struct{}

// NewCodeGenerator returns a CodeGenerator backed by crypto/rand.
func NewCodeGenerator() service.CodeGenerator {
	return &randomCodeGenerator{}
}

// Generate returns a hex-encoded random code.
func (g *randomCodeGenerator) Generate() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}

	return hex.EncodeToString(buf), nil
}

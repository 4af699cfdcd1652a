package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeGenerator_Generate(t *testing.T) {
	gen := NewCodeGenerator()

	seen := make(map[string]struct{})
	for range 50 {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, code, 64)

		_, err = hex.DecodeString(code)
		require.NoError(t, err)

		_, dup := seen[code]
		assert.False(t, dup)
		seen[code] = struct{}{}
	}
}

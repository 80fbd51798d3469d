package companies

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJoinCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^bl-\d{5}-\d{4}$`)

	for i := 0; i < 50; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestNewJoinCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// collisions are possible but twenty identical draws are not
	assert.Greater(t, len(seen), 1)
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashStrings(t *testing.T) {
	h := HashStrings("freepik", "a castle")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashStrings("freepik", "a castle"))
	assert.NotEqual(t, h, HashStrings("imagen", "a castle"))
	assert.NotEqual(t, HashStrings("ab", "c"), HashStrings("a", "bc"))
	assert.NotEqual(t, HashStrings(), HashStrings(""))
}

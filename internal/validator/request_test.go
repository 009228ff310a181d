package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"neutral", "minor", "major", "critical"} {
		assert.True(t, ValidLevel(level), level)
	}

	assert.False(t, ValidLevel("severe"))
	assert.False(t, ValidLevel("Minor"))
	assert.False(t, ValidLevel(""))
}

func TestValidType(t *testing.T) {
	assert.True(t, ValidType("source"))
	assert.True(t, ValidType("target"))

	assert.False(t, ValidType("both"))
	assert.False(t, ValidType("Source"))
	assert.False(t, ValidType(""))
}

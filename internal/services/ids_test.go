package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDGeneratorProducesUniqueIDs(t *testing.T) {
	gen := NewIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

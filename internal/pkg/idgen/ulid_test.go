package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIDIsValidAndSorted(t *testing.T) {
	now := time.Now()
	prev := NewIDAt(now)
	for i := 0; i < 100; i++ {
		next := NewIDAt(now)
		assert.True(t, Valid(next))
		assert.Less(t, prev, next)
		prev = next
	}
	assert.False(t, Valid("not-a-ulid"))
}

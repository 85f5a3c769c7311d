package token

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mystique/internal/ports"
)

func TestEstimateFast(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, EstimateFast(""))
	assert.Equal(t, 0, EstimateFast("   "))
	assert.Equal(t, 1, EstimateFast("hi"))
	assert.GreaterOrEqual(t, EstimateFast("one two three four"), 4)
}

func TestCountNonEmpty(t *testing.T) {
	t.Parallel()

	// Exact counts depend on encoding availability; both paths return a
	// positive count for real text.
	assert.Positive(t, Count("The cards reveal a long journey ahead."))
	assert.Equal(t, 0, Count(""))
}

func TestCountMessages(t *testing.T) {
	t.Parallel()

	messages := []ports.Message{
		{Role: ports.RoleSystem, Content: "You are Madame Mystique."},
		{Role: ports.RoleUser, Content: "Will I find fortune?"},
	}
	sum := Count(messages[0].Content) + Count(messages[1].Content)
	assert.Equal(t, sum, CountMessages(messages))
}

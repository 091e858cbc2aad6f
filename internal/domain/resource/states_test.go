package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycle(t *testing.T) {
	t.Parallel()

	m := Lifecycle("draft", "confirmed", "executed")

	assert.Equal(t, "draft", m.Initial)

	assert.True(t, m.CanTransition("draft", "confirmed"))
	assert.True(t, m.CanTransition("confirmed", "executed"))
	assert.True(t, m.CanTransition("draft", "cancelled"))
	assert.True(t, m.CanTransition("confirmed", "cancelled"))

	// No skipping, no leaving terminal or cancelled.
	assert.False(t, m.CanTransition("draft", "executed"))
	assert.False(t, m.CanTransition("executed", "cancelled"))
	assert.False(t, m.CanTransition("cancelled", "draft"))
	assert.False(t, m.CanTransition("executed", "draft"))

	assert.True(t, m.IsTerminal("executed"))
	assert.False(t, m.IsTerminal("cancelled"))
	assert.False(t, m.IsTerminal("draft"))

	for _, s := range []string{"draft", "confirmed", "executed", "cancelled"} {
		assert.True(t, m.Known(s), s)
	}
	assert.False(t, m.Known("shipped"))
}

package resource

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 13, 45, 0, 0, time.UTC)
	code, err := GenerateCode("TRD", now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "TRD20260828-"), code)
	assert.LessOrEqual(t, len(code), MaxCodeLen)

	other, err := GenerateCode("TRD", now)
	require.NoError(t, err)
	assert.NotEqual(t, code, other, "random suffix should differ")
}

func TestCheckCodeLength(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckCodeLength(strings.Repeat("A", MaxCodeLen)))
	assert.Error(t, CheckCodeLength(strings.Repeat("A", MaxCodeLen+1)))
}

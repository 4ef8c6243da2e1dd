package stacktrace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture(t *testing.T) {
	trace := Capture(0)
	require.NotEmpty(t, trace)

	lines := strings.Split(trace, "\n")
	assert.Contains(t, lines[0], "stacktrace.TestCapture")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "at "), line)
		assert.NotContains(t, line, "at runtime.")
	}
}

func helper() string { return Capture(1) }

func TestCapture_Skip(t *testing.T) {
	trace := helper()
	require.NotEmpty(t, trace)
	assert.NotContains(t, strings.Split(trace, "\n")[0], "helper")
}

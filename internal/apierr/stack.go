package apierr

import (
	"strings"

	"github.com/boulevard/bicycles/internal/stacktrace"
)

const (
	stackPreamble = "Error: Something went wrong"
	noStack       = "No stack trace available!"
	frameIndent   = "\n    "
)

// formatStack keeps the "at " frame lines of trace. Without any, it captures
// the current call site instead.
func formatStack(trace string) string {
	if frames := frameLines(trace); len(frames) > 0 {
		return stackPreamble + frameIndent + strings.Join(frames, frameIndent)
	}
	if frames := frameLines(stacktrace.Capture(2)); len(frames) > 0 {
		return "Error" + frameIndent + strings.Join(frames, frameIndent)
	}
	return noStack
}

func frameLines(trace string) []string {
	var frames []string
	for _, line := range strings.Split(trace, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "at ") {
			frames = append(frames, line)
		}
	}
	return frames
}

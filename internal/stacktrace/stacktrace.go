// Package stacktrace renders call stacks as "at <func> (<file>:<line>)"
// frame lines for diagnostic output.
package stacktrace

import (
	"fmt"
	"runtime"
	"strings"
)

const maxDepth = 32

// Capture returns the frames of the calling goroutine, skipping skip frames
// above the caller of Capture. It returns "" when no frame is available.
func Capture(skip int) string {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		// Frames below main/goexit are runtime plumbing.
		if strings.HasPrefix(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

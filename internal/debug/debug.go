// Package debug provides the gated, indentation-aware tracer that the
// parser core and tree builder call into at the start/end of their hot
// paths. It costs nothing when Enabled is false: call sites guard every
// trace with "if debug.Enabled" so the format arguments are never even
// evaluated in production builds.
package debug

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// Enabled turns tracing on. It defaults to false; nothing in this module
// sets it, so a caller or test that wants tracing sets it directly.
var Enabled bool

var depth int32

// Printf writes one trace line, indented to the current nesting depth.
func Printf(format string, args ...interface{}) {
	d := atomic.LoadInt32(&depth)
	fmt.Fprintf(os.Stderr, "%s%s\n", strings.Repeat("  ", int(d)), fmt.Sprintf(format, args...))
}

// Guard is returned by IPrintf; calling IRelease on it prints the matching
// "end" trace line and pops the indentation level.
type Guard struct {
	label string
}

// IPrintf prints an "enter" trace line and increases indentation for every
// trace line printed until the returned Guard's IRelease is called.
func IPrintf(format string, args ...interface{}) *Guard {
	msg := fmt.Sprintf(format, args...)
	Printf("%s", msg)
	atomic.AddInt32(&depth, 1)
	return &Guard{label: msg}
}

// IRelease prints an "end" trace line and restores the indentation level
// that was active before the matching IPrintf.
func (g *Guard) IRelease(format string, args ...interface{}) {
	atomic.AddInt32(&depth, -1)
	Printf(format, args...)
}

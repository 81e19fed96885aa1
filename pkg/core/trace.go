package core

import "fmt"

// tracef writes a trace line when enabled, gated the way the teacher gates
// cmd/z80opt/main.go's verbose fmt.Printf calls and pkg/search/worker.go's
// progress printer -- a plain conditional fmt.Fprintf, no logging library.
func (c *CPU) tracef(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	fmt.Fprintf(c.traceOut, format, args...)
}

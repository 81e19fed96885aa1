package core

import "fmt"

// Trap is an instruction-level fault: divide by zero, out-of-range memory
// access, or a stalled-pipeline deadlock. CPU.Run returns it rather than
// panicking (spec.md §7).
type Trap struct {
	Cycle   uint64
	ROBIdx  int
	Line    int
	Kind    string
	Message string
}

func (t *Trap) Error() string {
	return fmt.Sprintf("trap at cycle %d (rob=%d line=%d): %s: %s", t.Cycle, t.ROBIdx, t.Line, t.Kind, t.Message)
}

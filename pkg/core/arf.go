// Package core implements the out-of-order engine: physical register file,
// rename table, reorder buffer, reservation stations, execution units, and
// the memory-ordering subsystem (store buffer, load fill buffers). This is
// "the hard part" spec.md singles out; everything else in the repository is
// an external collaborator around this package.
package core

import "github.com/eberaud/oooarm/pkg/isa"

// ArchIndex maps a RegID to a dense index into the arch_reg_count-sized
// register file. General registers r0..r(N-4) occupy the low indices;
// LR, SP and CPSR occupy the top three slots, so the layout scales with a
// configured arch_reg_count instead of hardcoding 31 general registers.
func ArchIndex(reg isa.RegID, archRegCount uint16) int {
	switch reg {
	case isa.RegCPSR:
		return int(archRegCount) - 1
	case isa.RegSP:
		return int(archRegCount) - 2
	case isa.RegLR:
		return int(archRegCount) - 3
	default:
		return int(reg)
	}
}

// ARF is the architectural register file: committed values only.
type ARF struct {
	values []isa.Word
}

// NewARF allocates an ARF sized for count architectural registers.
func NewARF(count uint16) *ARF {
	return &ARF{values: make([]isa.Word, count)}
}

// Get reads the committed value of an architectural register.
func (a *ARF) Get(idx int) isa.Word { return a.values[idx] }

// Set writes the committed value of an architectural register.
func (a *ARF) Set(idx int, v isa.Word) { a.values[idx] = v }

// Snapshot returns a copy, for introspection and snapshotting.
func (a *ARF) Snapshot() []isa.Word {
	out := make([]isa.Word, len(a.values))
	copy(out, a.values)
	return out
}

// Restore overwrites the committed register values from a prior Snapshot,
// used to resume a checkpointed run.
func (a *ARF) Restore(values []isa.Word) { copy(a.values, values) }

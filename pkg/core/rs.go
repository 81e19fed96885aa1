package core

import "github.com/eberaud/oooarm/pkg/isa"

// SrcOperand is one reservation-station source slot: either already a
// resolved value (immediate, or a register snapshot captured off the
// result bus) or still waiting on a physical register tag.
type SrcOperand struct {
	Ready bool
	Value isa.Word
	Tag   int // physical register id awaited, meaningful only if !Ready
}

// RSSlot is one reservation-station entry: a decoded µop waiting for its
// operands and an execution unit. Grounded on
// Maemo32-SupraX_Legacy/proto/ooo/ooo.go's age-ordered, readiness-gated
// issue selection, generalized from a fixed 32-slot instruction window
// keyed by raw register ids to ROB-index-tagged slots keyed by physical
// register tags (this codebase already has a PRF with per-register
// has_value bits, so a separate bitmap scoreboard would just duplicate it).
type RSSlot struct {
	Occupied bool
	ROBIndex int
	Op       isa.Opcode
	Addr     uint32 // instruction's own fetch address, for branch fallthrough
	Src      [2]SrcOperand
	HasSink  bool
	SinkPhys int
	Seq      uint64 // program-order sequence number, shared with ROB/SB
}

// Ready reports whether every source operand has resolved.
func (s *RSSlot) Ready() bool {
	return s.Src[0].Ready && s.Src[1].Ready
}

// RS is the pool of rs_count reservation stations.
type RS struct {
	slots []RSSlot
}

// NewRS allocates an RS pool with the given slot count.
func NewRS(count int) *RS {
	return &RS{slots: make([]RSSlot, count)}
}

// Capacity reports rs_count.
func (r *RS) Capacity() int { return len(r.slots) }

// FreeSlot finds an unoccupied slot index, if any.
func (r *RS) FreeSlot() (int, bool) {
	for i := range r.slots {
		if !r.slots[i].Occupied {
			return i, true
		}
	}
	return 0, false
}

// NumFree reports how many RS slots are unoccupied.
func (r *RS) NumFree() int {
	n := 0
	for i := range r.slots {
		if !r.slots[i].Occupied {
			n++
		}
	}
	return n
}

// Allocate fills a free slot. s.Seq must already carry the instruction's
// program-order sequence number (oldest-first priority for dispatch).
func (r *RS) Allocate(idx int, s RSSlot) {
	s.Occupied = true
	r.slots[idx] = s
}

// At returns a pointer to a slot for in-place mutation (operand capture,
// dispatch, release).
func (r *RS) At(idx int) *RSSlot { return &r.slots[idx] }

// Release marks a slot free.
func (r *RS) Release(idx int) { r.slots[idx] = RSSlot{} }

// ObserveResultBus snapshots a newly produced value into every waiting
// operand tagged with phys, the "wake-up" spec.md §4.5 describes.
func (r *RS) ObserveResultBus(phys int, value isa.Word) {
	for i := range r.slots {
		if !r.slots[i].Occupied {
			continue
		}
		for j := 0; j < 2; j++ {
			src := &r.slots[i].Src[j]
			if !src.Ready && src.Tag == phys {
				src.Ready = true
				src.Value = value
			}
		}
	}
}

// ReadyIndicesOldestFirst returns occupied, ready, not-yet-dispatched slot
// indices in ascending program-order sequence (oldest first), the order
// dispatch-to-EU scans in.
func (r *RS) ReadyIndicesOldestFirst() []int {
	type aged struct {
		idx int
		seq uint64
	}
	var list []aged
	for i := range r.slots {
		s := &r.slots[i]
		if s.Occupied && s.Ready() {
			list = append(list, aged{i, s.Seq})
		}
	}
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].seq < list[j-1].seq; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
	out := make([]int, len(list))
	for i, a := range list {
		out[i] = a.idx
	}
	return out
}

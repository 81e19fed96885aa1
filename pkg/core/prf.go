package core

import "github.com/eberaud/oooarm/pkg/isa"

// PRFSlot is one physical register: a value and whether it has been
// produced yet. Waiting reservation-station operands key off HasValue.
type PRFSlot struct {
	Value    isa.Word
	HasValue bool
}

// PRF is the physical register file plus its LIFO free list. spec.md's
// invariant P1/P3: a physical register is in exactly one of {free list,
// mapped by RAT, referenced by an in-flight ROB entry} at any time.
type PRF struct {
	slots []PRFSlot
	free  []int // LIFO
}

// NewPRF allocates count physical registers, with the first archRegCount
// pre-mapped (identity) and holding zero values, and the rest on the free
// list. Matches spec.md §4.2 init: "RAT = identity over first
// arch_reg_count phys regs, free list = remaining phys regs".
func NewPRF(count uint16, archRegCount uint16) *PRF {
	p := &PRF{slots: make([]PRFSlot, count)}
	for i := 0; i < int(archRegCount); i++ {
		p.slots[i] = PRFSlot{Value: 0, HasValue: true}
	}
	for i := int(count) - 1; i >= int(archRegCount); i-- {
		p.free = append(p.free, i)
	}
	return p
}

// Alloc pops a physical register off the free list.
func (p *PRF) Alloc() (int, bool) {
	if len(p.free) == 0 {
		return 0, false
	}
	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.slots[id] = PRFSlot{}
	return id, true
}

// Free returns a physical register to the free list.
func (p *PRF) Free(id int) {
	p.free = append(p.free, id)
}

// NumFree reports the free list length, for backpressure checks and tests.
func (p *PRF) NumFree() int { return len(p.free) }

// Get reads a physical register's current slot.
func (p *PRF) Get(id int) PRFSlot { return p.slots[id] }

// Write produces a value into a physical register, the "result bus" write
// that wakes reservation-station operands tagged with id.
func (p *PRF) Write(id int, v isa.Word) {
	p.slots[id] = PRFSlot{Value: v, HasValue: true}
}

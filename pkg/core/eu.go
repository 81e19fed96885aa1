package core

import "github.com/eberaud/oooarm/pkg/isa"

// EUSlot is one execution unit: busy with an op for a fixed number of
// remaining cycles, holding the operand values it captured at dispatch.
type EUSlot struct {
	Busy      bool
	ROBIndex  int
	RSIndex   int
	Op        isa.Opcode
	Addr      uint32 // instruction's own fetch address, for branch fallthrough
	Remaining int
	Src       [2]isa.Word
	HasSink   bool
	SinkPhys  int
	Line      int
}

// EU is the pool of eu_count execution units.
type EU struct {
	slots []EUSlot
}

// NewEU allocates an EU pool with the given slot count.
func NewEU(count int) *EU {
	return &EU{slots: make([]EUSlot, count)}
}

// FreeSlot finds an idle EU, if any.
func (e *EU) FreeSlot() (int, bool) {
	for i := range e.slots {
		if !e.slots[i].Busy {
			return i, true
		}
	}
	return 0, false
}

// Occupy starts an EU on a µop.
func (e *EU) Occupy(idx int, s EUSlot) {
	s.Busy = true
	e.slots[idx] = s
}

// At returns a pointer to an EU slot for in-place mutation.
func (e *EU) At(idx int) *EUSlot { return &e.slots[idx] }

// Len reports eu_count.
func (e *EU) Len() int { return len(e.slots) }

// Release frees an EU slot after its result has been written back.
func (e *EU) Release(idx int) { e.slots[idx] = EUSlot{} }

package core

// LFBState is a load-fill-buffer entry's lifecycle stage.
type LFBState uint8

const (
	LFBFilling LFBState = iota
	LFBComplete
)

// LFBEntry tracks one outstanding load.
type LFBEntry struct {
	Occupied  bool
	State     LFBState
	Address   uint32
	DestPhys  int
	ROBIndex  int
	Remaining int
	Seq       uint64 // this load's RS allocation age, for forwarding's "older store" check
}

// LFB is the pool of lfb_count load fill buffers.
type LFB struct {
	entries []LFBEntry
}

// NewLFB allocates an LFB pool with the given slot count.
func NewLFB(count int) *LFB {
	return &LFB{entries: make([]LFBEntry, count)}
}

// FreeSlot finds an idle LFB entry, if any.
func (l *LFB) FreeSlot() (int, bool) {
	for i := range l.entries {
		if !l.entries[i].Occupied {
			return i, true
		}
	}
	return 0, false
}

// NumFree reports how many LFB slots are unoccupied.
func (l *LFB) NumFree() int {
	n := 0
	for i := range l.entries {
		if !l.entries[i].Occupied {
			n++
		}
	}
	return n
}

// Occupy starts an LFB entry.
func (l *LFB) Occupy(idx int, e LFBEntry) {
	e.Occupied = true
	l.entries[idx] = e
}

// At returns a pointer to an entry for in-place mutation.
func (l *LFB) At(idx int) *LFBEntry { return &l.entries[idx] }

// Release frees an LFB entry.
func (l *LFB) Release(idx int) { l.entries[idx] = LFBEntry{} }

// All returns every occupied entry's index, for the memory-subsystem tick.
func (l *LFB) All() []int {
	var out []int
	for i := range l.entries {
		if l.entries[i].Occupied {
			out = append(out, i)
		}
	}
	return out
}

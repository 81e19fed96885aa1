package core

import "github.com/eberaud/oooarm/pkg/isa"

// ROBState is an entry's lifecycle stage.
type ROBState uint8

const (
	ROBIssued ROBState = iota
	ROBExecuting
	ROBExecuted
)

// ROBEntry is one in-flight instruction's bookkeeping, keyed by its ROB
// index -- the cross-table primary key spec.md §9 calls out in place of
// cyclic ownership between components.
type ROBEntry struct {
	Valid bool
	State ROBState
	Op    isa.Opcode
	Line  int
	Seq   uint64 // program-order sequence number, shared with RS slot and SB entry

	PrintReg isa.RegID // register PRINTR reads at retirement

	HasSink  bool
	SinkArch int // dense arch index, only meaningful if HasSink
	SinkPhys int
	PrevPhys int // phys reg previously mapped to SinkArch, for rollback

	SPSink     bool // POP's extra SP write
	SPPrevPhys int
	SPPhys     int

	IsBranch        bool
	PredictedTaken  bool
	PredictedTarget uint32
	ActualTarget    uint32
	Taken           bool
	Mispredicted    bool

	IsStore bool
	SBIndex int
}

// ROB is a ring buffer of capacity rob_capacity. Head is next-to-commit,
// tail is next-to-allocate.
type ROB struct {
	entries  []ROBEntry
	head     int
	tail     int
	count    int
	capacity int
}

// NewROB allocates a ROB with the given capacity.
func NewROB(capacity int) *ROB {
	return &ROB{entries: make([]ROBEntry, capacity), capacity: capacity}
}

// Full reports whether the ROB has no free slot.
func (r *ROB) Full() bool { return r.count == r.capacity }

// Empty reports whether the ROB holds no in-flight entries.
func (r *ROB) Empty() bool { return r.count == 0 }

// Len reports how many entries are in flight.
func (r *ROB) Len() int { return r.count }

// Capacity reports rob_capacity.
func (r *ROB) Capacity() int { return r.capacity }

// Head returns the index of the oldest in-flight entry. Valid only if !Empty().
func (r *ROB) Head() int { return r.head }

// Tail returns the index the next Allocate call will use. Valid only if !Full().
func (r *ROB) Tail() int { return r.tail }

// Allocate reserves the tail slot and returns its index.
func (r *ROB) Allocate(e ROBEntry) int {
	idx := r.tail
	e.Valid = true
	r.entries[idx] = e
	r.tail = (r.tail + 1) % r.capacity
	r.count++
	return idx
}

// At returns a pointer to the entry at a given ROB index for in-place
// mutation by other substeps (writeback, squash).
func (r *ROB) At(idx int) *ROBEntry { return &r.entries[idx] }

// RetireHead pops the head entry after it has been committed.
func (r *ROB) RetireHead() {
	r.entries[r.head] = ROBEntry{}
	r.head = (r.head + 1) % r.capacity
	r.count--
}

// IndicesYoungToOld returns every in-flight ROB index from tail-1 down to head, the
// youngest-to-oldest walk order squash uses.
func (r *ROB) IndicesYoungToOld() []int {
	out := make([]int, 0, r.count)
	for i := 0; i < r.count; i++ {
		idx := (r.tail - 1 - i + r.capacity) % r.capacity
		out = append(out, idx)
	}
	return out
}

// Clear discards every in-flight entry, used by squash when the
// mispredicting entry (already popped by the caller) was the ROB head: all
// remaining entries are younger and therefore all invalidated.
func (r *ROB) Clear() {
	for i := range r.entries {
		r.entries[i] = ROBEntry{}
	}
	r.head, r.tail, r.count = 0, 0, 0
}

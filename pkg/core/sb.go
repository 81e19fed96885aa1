package core

import "github.com/eberaud/oooarm/pkg/isa"

// SBState is a store-buffer entry's lifecycle stage.
type SBState uint8

const (
	SBAllocated SBState = iota
	SBAddressReady
	SBValueReady
	SBCommitted // retired; eligible to drain to memory
)

// SBEntry is one pending store. Address and value are tracked with
// independent readiness so a load can observe "address known, value not
// yet" and stall rather than only ever seeing an all-or-nothing store
// (spec.md §4.4's forward/stall distinction, and the boundary scenario
// "load stalled behind older same-address store whose value is not yet
// ready" in spec.md §8).
type SBEntry struct {
	Occupied bool
	State    SBState
	Address  uint32
	Value    isa.Word
	ROBIndex int
	Seq      uint64
}

// StoreBuffer is the FIFO of sb_capacity pending stores.
type StoreBuffer struct {
	entries  []SBEntry
	head     int
	tail     int
	count    int
	capacity int
}

// NewStoreBuffer allocates a store buffer with the given capacity.
func NewStoreBuffer(capacity int) *StoreBuffer {
	return &StoreBuffer{entries: make([]SBEntry, capacity), capacity: capacity}
}

// Full reports whether the store buffer has no free slot.
func (s *StoreBuffer) Full() bool { return s.count == s.capacity }

// Empty reports whether the store buffer holds no entries.
func (s *StoreBuffer) Empty() bool { return s.count == 0 }

// Allocate reserves the tail slot for a store at decode time, returning its
// index (the ROB entry's SB-slot id). seq is the instruction's program-order
// sequence number, shared with its ROB entry and RS slot so loads can tell
// which stores are older.
func (s *StoreBuffer) Allocate(robIndex int, seq uint64) int {
	idx := s.tail
	s.entries[idx] = SBEntry{Occupied: true, State: SBAllocated, ROBIndex: robIndex, Seq: seq}
	s.tail = (s.tail + 1) % s.capacity
	s.count++
	return idx
}

// At returns a pointer to an entry for in-place mutation.
func (s *StoreBuffer) At(idx int) *SBEntry { return &s.entries[idx] }

// Head returns the index of the oldest entry. Valid only if !Empty().
func (s *StoreBuffer) Head() int { return s.head }

// DrainHead pops the head entry, used once it has been written to memory.
func (s *StoreBuffer) DrainHead() {
	s.entries[s.head] = SBEntry{}
	s.head = (s.head + 1) % s.capacity
	s.count--
}

// TruncateToCommittedPrefix discards every entry that is not yet COMMITTED,
// used by squash. A FIFO store buffer always has its committed entries as a
// leading prefix (commit happens in the same program order as allocation),
// so this just trims the tail back to the end of that prefix.
func (s *StoreBuffer) TruncateToCommittedPrefix() {
	keep := 0
	for i := 0; i < s.count; i++ {
		idx := (s.head + i) % s.capacity
		if s.entries[idx].State != SBCommitted {
			break
		}
		keep++
	}
	for i := keep; i < s.count; i++ {
		idx := (s.head + i) % s.capacity
		s.entries[idx] = SBEntry{}
	}
	s.tail = (s.head + keep) % s.capacity
	s.count = keep
}

// OlderAddressReady scans entries whose sequence number is below beforeSeq
// in program order for the most recent one at the given address that has
// at least an address assigned. Returns ok=false if none.
func (s *StoreBuffer) OlderAddressReady(addr uint32, beforeSeq uint64) (entry *SBEntry, ok bool) {
	var best *SBEntry
	for i := 0; i < s.count; i++ {
		idx := (s.head + i) % s.capacity
		e := &s.entries[idx]
		if !e.Occupied || e.Seq >= beforeSeq {
			continue
		}
		if e.State == SBAllocated {
			continue
		}
		if e.Address == addr {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

package core

import "github.com/eberaud/oooarm/pkg/isa"

// IQEntry is one fetched-but-not-yet-decoded instruction.
type IQEntry struct {
	Instr isa.Instruction
	Addr  uint32 // code address it was fetched from, for branch bookkeeping

	// Prediction carried forward from fetch time, so rename/dispatch can
	// stamp the ROB entry without re-deriving the guess.
	PredictedTaken  bool
	PredictedTarget uint32
}

// IQ is the ring buffer between frontend fetch and rename/dispatch. head
// and tail are free-running uint64 counters indexed modulo capacity, which
// makes size = tail-head valid without the wraparound hazard spec.md §9
// flags in the counters it was distilled from (capacity is assumed well
// below 2^64, so the counters never actually wrap in any real run).
type IQ struct {
	entries  []IQEntry
	head     uint64
	tail     uint64
	capacity uint64
}

// NewIQ allocates an instruction queue with the given capacity.
func NewIQ(capacity int) *IQ {
	return &IQ{entries: make([]IQEntry, capacity), capacity: uint64(capacity)}
}

// Size reports how many entries are queued.
func (q *IQ) Size() int { return int(q.tail - q.head) }

// Full reports whether the queue has no free slot.
func (q *IQ) Full() bool { return q.tail-q.head == q.capacity }

// Empty reports whether the queue holds no entries.
func (q *IQ) Empty() bool { return q.head == q.tail }

// Push enqueues an entry. Caller must check Full first.
func (q *IQ) Push(e IQEntry) {
	q.entries[q.tail%q.capacity] = e
	q.tail++
}

// Peek returns the oldest entry without dequeuing it. Caller must check
// Empty first.
func (q *IQ) Peek() IQEntry { return q.entries[q.head%q.capacity] }

// Pop dequeues the oldest entry. Caller must check Empty first.
func (q *IQ) Pop() IQEntry {
	e := q.entries[q.head%q.capacity]
	q.head++
	return e
}

// Clear empties the queue, used by squash.
func (q *IQ) Clear() {
	q.head = 0
	q.tail = 0
}

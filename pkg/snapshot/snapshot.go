// Package snapshot saves and restores architectural checkpoints of a
// running simulation, the way the teacher's pkg/result checkpoints a
// search run: encoding/gob to a file, decode back into a fresh value.
//
// Only committed, architectural state is captured (registers, memory, the
// program counter, cycle count, and PRINTR history) -- never the in-flight
// speculative state (ROB/RS/EU/SB/LFB contents). A resumed run starts that
// machinery cold and re-executes forward from PC; since every invariant in
// spec.md is phrased over committed state, a cold microarchitectural start
// reproduces identical architectural results, just without the performance
// history of whatever was in flight when the snapshot was taken.
package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/eberaud/oooarm/pkg/core"
	"github.com/eberaud/oooarm/pkg/isa"
)

// Snapshot is the serializable architectural state of a simulation.
type Snapshot struct {
	ProgramPath string
	PC          uint32
	Cycle       uint64
	Retired     uint64
	ARF         []isa.Word
	Memory      []isa.Word
	Prints      []core.PrintEvent
}

func init() {
	gob.Register(isa.Word(0))
}

// Capture builds a Snapshot from a CPU's current committed state.
func Capture(c CPUState, programPath string) Snapshot {
	return Snapshot{
		ProgramPath: programPath,
		PC:          c.PC(),
		Cycle:       c.Cycle(),
		Retired:     c.Retired(),
		ARF:         c.ARFSnapshot(),
		Memory:      c.MemorySnapshot(),
		Prints:      c.PrintEvents(),
	}
}

// Resume builds a core.ResumeState from a loaded Snapshot, ready to hand to
// a fresh *core.CPU's Resume method. Kept here, rather than on core.CPU
// itself, so pkg/core never needs to import pkg/snapshot.
func (s Snapshot) Resume() core.ResumeState {
	return core.ResumeState{
		PC:      s.PC,
		Cycle:   s.Cycle,
		Retired: s.Retired,
		ARF:     s.ARF,
		Memory:  s.Memory,
		Prints:  s.Prints,
	}
}

// CPUState is the subset of *core.CPU introspection Capture needs, kept as
// an interface so tests can capture from a fake without driving a real CPU.
type CPUState interface {
	PC() uint32
	Cycle() uint64
	Retired() uint64
	ARFSnapshot() []isa.Word
	MemorySnapshot() []isa.Word
	PrintEvents() []core.PrintEvent
}

// Save writes a Snapshot to path.
func Save(path string, snap Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Load reads a Snapshot from path.
func Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()
	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/eberaud/oooarm/pkg/core"
	"github.com/eberaud/oooarm/pkg/isa"
)

type fakeCPU struct {
	pc      uint32
	cycle   uint64
	retired uint64
	arf     []isa.Word
	mem     []isa.Word
	prints  []core.PrintEvent
}

func (f fakeCPU) PC() uint32                     { return f.pc }
func (f fakeCPU) Cycle() uint64                  { return f.cycle }
func (f fakeCPU) Retired() uint64                { return f.retired }
func (f fakeCPU) ARFSnapshot() []isa.Word        { return f.arf }
func (f fakeCPU) MemorySnapshot() []isa.Word     { return f.mem }
func (f fakeCPU) PrintEvents() []core.PrintEvent { return f.prints }

func TestCaptureSaveLoadRoundTrip(t *testing.T) {
	fc := fakeCPU{
		pc:      12,
		cycle:   340,
		retired: 99,
		arf:     []isa.Word{1, 2, 3},
		mem:     []isa.Word{9, 8, 7, 6},
		prints:  []core.PrintEvent{{Cycle: 10, Reg: "r0", Value: 5}},
	}
	snap := Capture(fc, "prog.s")
	if snap.PC != 12 || snap.Cycle != 340 || snap.Retired != 99 {
		t.Fatalf("Capture() = %+v, pc/cycle/retired mismatch", snap)
	}

	path := filepath.Join(t.TempDir(), "snap.gob")
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ProgramPath != "prog.s" || loaded.PC != 12 || loaded.Cycle != 340 {
		t.Errorf("Load() = %+v, want matching round-tripped snapshot", loaded)
	}
	if len(loaded.ARF) != 3 || loaded.ARF[1] != 2 {
		t.Errorf("Load().ARF = %v, want [1 2 3]", loaded.ARF)
	}
	if len(loaded.Prints) != 1 || loaded.Prints[0].Value != 5 {
		t.Errorf("Load().Prints = %+v, want one PRINTR event with value 5", loaded.Prints)
	}
	if loaded.Retired != 99 {
		t.Errorf("Load().Retired = %d, want 99", loaded.Retired)
	}
}

func TestSnapshotResumeConvertsToCoreResumeState(t *testing.T) {
	snap := Snapshot{
		PC:      7,
		Cycle:   100,
		Retired: 42,
		ARF:     []isa.Word{1, 2},
		Memory:  []isa.Word{3, 4, 5},
		Prints:  []core.PrintEvent{{Cycle: 5, Reg: "r1", Value: 2}},
	}
	state := snap.Resume()
	if state.PC != 7 || state.Cycle != 100 || state.Retired != 42 {
		t.Fatalf("Resume() = %+v, want pc/cycle/retired to match snapshot", state)
	}
	if len(state.ARF) != 2 || len(state.Memory) != 3 || len(state.Prints) != 1 {
		t.Errorf("Resume() = %+v, want slices carried through unchanged", state)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Errorf("Load() = nil error, want one for a missing file")
	}
}

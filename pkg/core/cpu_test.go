package core

import (
	"strings"
	"testing"

	"github.com/eberaud/oooarm/pkg/asm"
	"github.com/eberaud/oooarm/pkg/config"
	"github.com/eberaud/oooarm/pkg/isa"
)

func mustParse(t *testing.T, src string) isa.Program {
	t.Helper()
	prog, err := asm.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog
}

func newCPU(t *testing.T, cfg config.Config) *CPU {
	t.Helper()
	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sb strings.Builder
	c.traceOut = &sb
	return c
}

func runToCompletion(t *testing.T, c *CPU, prog isa.Program, maxCycles uint64) {
	t.Helper()
	c.Init(prog)
	if err := c.Run(maxCycles); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

// TestStraightLineExecution checks that a simple arithmetic chain retires in
// order and produces the expected architectural result.
func TestStraightLineExecution(t *testing.T) {
	prog := mustParse(t, `
.text
MOV r0, #5;
ADD r1, r0, #10;
SUB r2, r1, #3;
PRINTR r2;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	if c.Retired() != 4 {
		t.Errorf("Retired() = %d, want 4", c.Retired())
	}
	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 12 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 12", prints)
	}
}

// TestBranchMispredictSquash exercises a not-taken-predicted branch that is
// actually taken, forcing a squash of everything fetched past it.
func TestBranchMispredictSquash(t *testing.T) {
	prog := mustParse(t, `
.text
MOV r0, #1;
CMP r0, r0;
BEQ target;
MOV r1, #999;
target:
MOV r1, #7;
PRINTR r1;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 7 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 7 (squashed wrong-path MOV r1,#999)", prints)
	}
}

// TestStoreToLoadForwarding checks that a load sees a pending, value-ready
// store to the same address without waiting on memory.
func TestStoreToLoadForwarding(t *testing.T) {
	prog := mustParse(t, `
.data
slot: .dword 0
.text
MOV r0, #42;
STR r0, =slot;
LDR r1, =slot;
PRINTR r1;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 42 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 42", prints)
	}
}

// TestPushPopRoundTrip checks the stack-pointer write asymmetry: PUSH's
// sink is the new SP, POP's sink is the popped register plus an
// unconditional SP increment.
func TestPushPopRoundTrip(t *testing.T) {
	prog := mustParse(t, `
.text
MOV sp, #31;
MOV r0, #123;
PUSH r0;
POP r1;
PRINTR r1;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 123 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 123", prints)
	}
	arf := c.ARFSnapshot()
	spIdx := ArchIndex(isa.RegSP, c.archRegCount)
	if arf[spIdx] != 31 {
		t.Errorf("final SP = %d, want 31 (back to pre-push level)", arf[spIdx])
	}
}

// TestConfigValidationTrapsAtConstruction checks that an invalid
// configuration is rejected at New, before any simulation can run.
func TestConfigValidationTrapsAtConstruction(t *testing.T) {
	cfg := config.Default()
	cfg.PhysRegCount = cfg.ArchRegCount - 1
	if _, err := New(cfg, nil); err == nil {
		t.Errorf("New() with phys < arch = nil error, want one")
	}
}

// TestLoadStallsBehindUnreadyStoreAddress exercises the boundary scenario
// where a load matches an older store's address, but that store's value
// has not been computed yet -- the load must wait rather than forward
// garbage or skip ahead to memory.
func TestLoadStallsBehindUnreadyStoreAddress(t *testing.T) {
	prog := mustParse(t, `
.data
slot: .dword 0
.text
MUL r0, r0, r0;
ADD r0, r0, #7;
STR r0, =slot;
LDR r1, =slot;
PRINTR r1;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 7 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 7", prints)
	}
}

// TestConditionalBranchNotTaken checks the default not-taken prediction
// path retires cleanly with no squash when the prediction turns out right.
func TestConditionalBranchNotTaken(t *testing.T) {
	prog := mustParse(t, `
.text
MOV r0, #1;
SUB r0, r0, #1;
CMP r0, r0;
BNE skip;
MOV r1, #1;
skip:
PRINTR r1;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 1 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 1", prints)
	}
}

// TestCallReturnUsesRAS exercises BL/RET prediction through the
// return-address stack.
func TestCallReturnUsesRAS(t *testing.T) {
	prog := mustParse(t, `
.text
BL callee;
PRINTR r0;
B done;
callee:
MOV r0, #55;
RET;
done:
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 1000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 55 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 55", prints)
	}
}

func TestDivideByZeroTraps(t *testing.T) {
	prog := mustParse(t, `
.text
MOV r0, #0;
DIV r1, r0, r0;
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	c.Init(prog)
	err := c.Run(1000)
	if err == nil {
		t.Fatalf("Run() = nil error, want a divide-by-zero trap")
	}
	trap, ok := err.(*Trap)
	if !ok {
		t.Fatalf("Run() error type = %T, want *Trap", err)
	}
	if trap.Kind != "arithmetic" {
		t.Errorf("trap.Kind = %q, want %q", trap.Kind, "arithmetic")
	}
}

// TestNarrowStructuresStillComplete checks that a program longer than the
// ROB/RS/PRF capacities still retires correctly by repeatedly stalling
// rename and dispatch rather than deadlocking or corrupting state.
func TestNarrowStructuresStillComplete(t *testing.T) {
	prog := mustParse(t, `
.text
MOV r0, #1;
ADD r0, r0, #1;
ADD r0, r0, #1;
ADD r0, r0, #1;
ADD r0, r0, #1;
ADD r0, r0, #1;
ADD r0, r0, #1;
ADD r0, r0, #1;
PRINTR r0;
`)
	cfg := config.Default()
	cfg.ROBCapacity = 2
	cfg.RSCount = 2
	cfg.PhysRegCount = cfg.ArchRegCount + 2
	cfg.InstrQueueCapacity = 2
	cfg.EUCount = 1
	c := newCPU(t, cfg)
	runToCompletion(t, c, prog, 10000)

	prints := c.PrintEvents()
	if len(prints) != 1 || prints[0].Value != 8 {
		t.Fatalf("PrintEvents() = %+v, want one event with value 8", prints)
	}
}

func TestOutOfRangeMemoryTraps(t *testing.T) {
	prog := mustParse(t, `
.text
MOV r0, #9999;
LDR r1, [r0];
`)
	cfg := config.Default()
	c := newCPU(t, cfg)
	c.Init(prog)
	err := c.Run(1000)
	if err == nil {
		t.Fatalf("Run() = nil error, want an out-of-range memory trap")
	}
	trap, ok := err.(*Trap)
	if !ok {
		t.Fatalf("Run() error type = %T, want *Trap", err)
	}
	if trap.Kind != "memory" {
		t.Errorf("trap.Kind = %q, want %q", trap.Kind, "memory")
	}
}

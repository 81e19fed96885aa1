package core

import (
	"fmt"
	"io"
	"os"

	"github.com/eberaud/oooarm/pkg/config"
	"github.com/eberaud/oooarm/pkg/isa"
)

// CPU wires every OoO structure together and drives the per-cycle tick.
// Single-threaded and cooperative, exactly as spec.md §5 mandates: no
// goroutines, no channels inside the core; the driver (cmd/oooarm, or
// pkg/bench for many programs at once) owns pacing and concurrency.
type CPU struct {
	cfg          config.Config
	archRegCount uint16

	arf *ARF
	prf *PRF
	rat *RAT
	rob *ROB
	rs  *RS
	eu  *EU
	mem *Memory
	sb  *StoreBuffer
	lfb *LFB
	iq  *IQ
	ras *RAS

	program isa.Program
	pc      uint32
	progSeq uint64
	cycle   uint64

	traceOut io.Writer
	printed  []PrintEvent
	retired  uint64
}

// PrintEvent is one PRINTR observation, captured in program order.
type PrintEvent struct {
	Cycle uint64
	Reg   string
	Value isa.Word
}

// New builds a CPU from a validated config. Returns an error if cfg fails
// Validate (spec.md §7 "Config invalid" is fatal at construction).
func New(cfg config.Config, traceOut io.Writer) (*CPU, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if traceOut == nil {
		traceOut = os.Stdout
	}
	c := &CPU{
		cfg:          cfg,
		archRegCount: cfg.ArchRegCount,
		arf:          NewARF(cfg.ArchRegCount),
		prf:          NewPRF(cfg.PhysRegCount, cfg.ArchRegCount),
		rat:          NewRAT(cfg.ArchRegCount),
		rob:          NewROB(int(cfg.ROBCapacity)),
		rs:           NewRS(int(cfg.RSCount)),
		eu:           NewEU(int(cfg.EUCount)),
		mem:          NewMemory(cfg.MemorySize),
		sb:           NewStoreBuffer(int(cfg.SBCapacity)),
		lfb:          NewLFB(int(cfg.LFBCount)),
		iq:           NewIQ(int(cfg.InstrQueueCapacity)),
		ras:          NewRAS(int(cfg.StackCapacity)),
		traceOut:     traceOut,
	}
	return c, nil
}

// ResumeState carries the committed state a checkpoint captured: PC, cycle
// count, retired count, architectural registers, and memory. It deliberately
// holds no microarchitectural state (ROB/RS/EU/RAT/PRF/store buffer/load
// fill buffers/IQ) -- every correctness property is phrased over committed
// state, so Resume restarts those structures cold and replays forward from
// here to the same architectural result as an uninterrupted run (cycle
// counts may differ, since in-flight work at capture time is re-executed).
type ResumeState struct {
	PC      uint32
	Cycle   uint64
	Retired uint64
	ARF     []isa.Word
	Memory  []isa.Word
	Prints  []PrintEvent
}

// Resume loads a program and seeds committed state from a prior checkpoint,
// then leaves the CPU ready for Run to continue from exactly that point.
// Every microarchitectural structure starts cold, same as Init -- nothing
// in flight survives a checkpoint, only what already retired.
func (c *CPU) Resume(program isa.Program, state ResumeState) {
	c.Init(program)

	c.pc = state.PC
	c.cycle = state.Cycle
	c.retired = state.Retired
	c.printed = append([]PrintEvent(nil), state.Prints...)

	c.arf.Restore(state.ARF)
	c.mem.Restore(state.Memory)

	// Init left the RAT identity-mapped, so each architectural register is
	// read through the physical register with the same index.
	for i, v := range c.arf.Snapshot() {
		c.prf.Write(i, v)
	}
}

// Init loads a program: resets PC and every in-flight structure, and
// preloads memory with the program's data items (spec.md §4.2 init).
func (c *CPU) Init(program isa.Program) {
	c.program = program
	c.pc = 0
	c.progSeq = 0
	c.cycle = 0
	c.printed = nil
	c.retired = 0

	c.arf = NewARF(c.cfg.ArchRegCount)
	c.prf = NewPRF(c.cfg.PhysRegCount, c.cfg.ArchRegCount)
	c.rat = NewRAT(c.cfg.ArchRegCount)
	c.rob = NewROB(int(c.cfg.ROBCapacity))
	c.rs = NewRS(int(c.cfg.RSCount))
	c.eu = NewEU(int(c.cfg.EUCount))
	c.mem = NewMemory(c.cfg.MemorySize)
	c.sb = NewStoreBuffer(int(c.cfg.SBCapacity))
	c.lfb = NewLFB(int(c.cfg.LFBCount))
	c.iq = NewIQ(int(c.cfg.InstrQueueCapacity))
	c.ras = NewRAS(int(c.cfg.StackCapacity))

	c.mem.Preload(program.DataItems)
}

// Done reports whether the simulation has drained: nothing left to fetch
// and no in-flight instructions anywhere in the pipeline, including retired
// stores still waiting in the store buffer to drain to memory.
func (c *CPU) Done() bool {
	return int(c.pc) >= len(c.program.Code) && c.iq.Empty() && c.rob.Empty() && c.sb.Empty()
}

// Cycle returns the current cycle count.
func (c *CPU) Cycle() uint64 { return c.cycle }

// PC returns the current fetch program counter.
func (c *CPU) PC() uint32 { return c.pc }

// Retired returns the total number of instructions committed so far.
func (c *CPU) Retired() uint64 { return c.retired }

// ARFSnapshot returns a read-only copy of committed register state.
func (c *CPU) ARFSnapshot() []isa.Word { return c.arf.Snapshot() }

// MemorySnapshot returns a read-only copy of memory.
func (c *CPU) MemorySnapshot() []isa.Word { return c.mem.Snapshot() }

// PrintEvents returns every PRINTR observation so far, in retirement order.
func (c *CPU) PrintEvents() []PrintEvent { return append([]PrintEvent(nil), c.printed...) }

// ArchRegCount exposes the configured register count, so callers can map
// register names to ARF indices with ArchIndex.
func (c *CPU) ArchRegCount() uint16 { return c.archRegCount }

// Tick advances the simulator by exactly one cycle, in the order spec.md §2
// mandates: memory subsystem, then backend, then frontend.
func (c *CPU) Tick() error {
	c.cycle++
	c.tracef(c.cfg.Trace.Cycle, "=== cycle %d ===\n", c.cycle)

	changed := false

	if ch, err := c.memoryTick(); err != nil {
		return err
	} else {
		changed = changed || ch
	}
	if ch, err := c.retireStep(); err != nil {
		return err
	} else {
		changed = changed || ch
	}
	if ch, err := c.writebackStep(); err != nil {
		return err
	} else {
		changed = changed || ch
	}
	if ch := c.dispatchStep(); ch {
		changed = true
	}
	if ch := c.fetchStep(); ch {
		changed = true
	}
	if ch := c.renameStep(); ch {
		changed = true
	}

	if !changed && !c.Done() {
		return &Trap{Cycle: c.cycle, ROBIdx: -1, Kind: "deadlock", Message: "stalled pipeline: no retire, writeback, dispatch, fetch or rename progress"}
	}
	return nil
}

// Run ticks until the simulation drains, a trap fires, or maxCycles is
// exceeded (maxCycles == 0 means unbounded).
func (c *CPU) Run(maxCycles uint64) error {
	for !c.Done() {
		if maxCycles > 0 && c.cycle >= maxCycles {
			return fmt.Errorf("exceeded max cycles (%d) without draining", maxCycles)
		}
		if err := c.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Package config holds the simulator's tunable parameters: pipeline widths,
// structure capacities, and trace toggles. Values come from Default() or
// from an optional TOML file (grounded on lookbusy1344-arm_emulator, which
// configures its ARM emulator from TOML). Of these fields only the trace
// toggles also have cobra flags in cmd/oooarm, and a flag can switch a
// toggle on but not off; widths and capacities have no flags.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Trace gates per-substep logging, named after spec.md §6's
// trace.{decode,issue,dispatch,execute,retire,cycle} toggles.
type Trace struct {
	Decode   bool `toml:"decode"`
	Issue    bool `toml:"issue"`
	Dispatch bool `toml:"dispatch"`
	Execute  bool `toml:"execute"`
	Retire   bool `toml:"retire"`
	Cycle    bool `toml:"cycle"`
}

// Config is every recognized option from spec.md §6.
type Config struct {
	ArchRegCount  uint16 `toml:"arch_reg_count"`
	PhysRegCount  uint16 `toml:"phys_reg_count"`

	FrontendNWide uint8 `toml:"frontend_n_wide"`
	DispatchNWide uint8 `toml:"dispatch_n_wide"`
	IssueNWide    uint8 `toml:"issue_n_wide"`
	RetireNWide   uint8 `toml:"retire_n_wide"`

	InstrQueueCapacity uint16 `toml:"instr_queue_capacity"`
	RSCount            uint16 `toml:"rs_count"`
	ROBCapacity        uint16 `toml:"rob_capacity"`
	EUCount            uint8  `toml:"eu_count"`

	SBCapacity    uint16 `toml:"sb_capacity"`
	LFBCount      uint8  `toml:"lfb_count"`
	MemorySize    uint32 `toml:"memory_size"`
	StackCapacity uint16 `toml:"stack_capacity"`

	FrequencyHz uint64 `toml:"frequency_hz"`

	LoadLatency int `toml:"load_latency"`

	Trace Trace `toml:"trace"`
}

// Default mirrors original_source/src/main.rs's example CPUConfig literal
// (phys_reg_count 64, frontend_n_wide 4, instr_queue_capacity 8, rs_count
// 16, memory_size 32, sb_capacity 16, lfb_count 8, rob_capacity 32,
// eu_count 16, retire/dispatch/issue_n_wide 4, stack_capacity 32), which is
// the only concrete set of defaults the spec traces back to.
func Default() Config {
	return Config{
		ArchRegCount:       34, // r0..r30, LR, SP, CPSR
		PhysRegCount:       64,
		FrontendNWide:      4,
		DispatchNWide:      4,
		IssueNWide:         4,
		RetireNWide:        4,
		InstrQueueCapacity: 8,
		RSCount:            16,
		ROBCapacity:        32,
		EUCount:            16,
		SBCapacity:         16,
		LFBCount:           8,
		MemorySize:         32,
		StackCapacity:      32,
		FrequencyHz:        1,
		LoadLatency:        3,
	}
}

// Validate fails fast on the "Config invalid" error kind from spec.md §7:
// phys < arch, or any zero width/capacity.
func (c Config) Validate() error {
	if c.PhysRegCount < c.ArchRegCount {
		return fmt.Errorf("config: phys_reg_count (%d) < arch_reg_count (%d)", c.PhysRegCount, c.ArchRegCount)
	}
	zero := map[string]uint64{
		"arch_reg_count":       uint64(c.ArchRegCount),
		"phys_reg_count":       uint64(c.PhysRegCount),
		"frontend_n_wide":      uint64(c.FrontendNWide),
		"dispatch_n_wide":      uint64(c.DispatchNWide),
		"issue_n_wide":         uint64(c.IssueNWide),
		"retire_n_wide":        uint64(c.RetireNWide),
		"instr_queue_capacity": uint64(c.InstrQueueCapacity),
		"rs_count":             uint64(c.RSCount),
		"rob_capacity":         uint64(c.ROBCapacity),
		"eu_count":             uint64(c.EUCount),
		"sb_capacity":          uint64(c.SBCapacity),
		"lfb_count":            uint64(c.LFBCount),
		"memory_size":          uint64(c.MemorySize),
		"stack_capacity":       uint64(c.StackCapacity),
		"load_latency":         uint64(c.LoadLatency),
	}
	for name, v := range zero {
		if v == 0 {
			return fmt.Errorf("config: %s must be non-zero", name)
		}
	}
	return nil
}

// LoadTOML reads a Config from a TOML file, starting from Default() so an
// omitted field keeps its default rather than zeroing out.
func LoadTOML(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

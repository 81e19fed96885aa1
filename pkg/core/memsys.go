package core

// memoryTick advances the memory-ordering subsystem by one cycle: load
// fill buffers count down and complete, and the store buffer drains its
// head into memory at most once per cycle (spec.md §4.4). Runs before the
// backend substeps so a load or store that completes this cycle is
// visible to retire/writeback/dispatch within the same tick.
func (c *CPU) memoryTick() (bool, error) {
	changed := false

	for _, idx := range c.lfb.All() {
		e := c.lfb.At(idx)
		e.Remaining--
		changed = true
		if e.Remaining > 0 {
			continue
		}
		val, err := c.mem.Load(e.Address)
		if err != nil {
			return changed, &Trap{Cycle: c.cycle, ROBIdx: e.ROBIndex, Line: c.rob.At(e.ROBIndex).Line, Kind: "memory", Message: err.Error()}
		}
		c.prf.Write(e.DestPhys, val)
		c.rs.ObserveResultBus(e.DestPhys, val)
		c.rob.At(e.ROBIndex).State = ROBExecuted
		c.tracef(c.cfg.Trace.Execute, "cycle %d: load complete rob=%d addr=%d val=%d\n", c.cycle, e.ROBIndex, e.Address, val)
		c.lfb.Release(idx)
	}

	if !c.sb.Empty() {
		head := c.sb.At(c.sb.Head())
		if head.State == SBCommitted {
			if err := c.mem.Store(head.Address, head.Value); err != nil {
				return changed, &Trap{Cycle: c.cycle, Kind: "memory", Message: err.Error()}
			}
			c.tracef(c.cfg.Trace.Execute, "cycle %d: store drain addr=%d val=%d\n", c.cycle, head.Address, head.Value)
			c.sb.DrainHead()
			changed = true
		}
	}

	return changed, nil
}

package core

import "github.com/eberaud/oooarm/pkg/isa"

// squash rolls back every entry younger than the just-retired mispredicting
// branch (already popped from the ROB by the caller) and redirects fetch,
// per spec.md §4.7. The mispredicting entry's own ROB head position means
// every remaining ROB entry is younger, so this invalidates the whole
// in-flight window rather than walking to a specific boundary.
func (c *CPU) squash(actualTarget uint32) {
	spArch := ArchIndex(isa.RegSP, c.archRegCount)

	for _, idx := range c.rob.IndicesYoungToOld() {
		e := c.rob.At(idx)
		if e.HasSink {
			c.rat.Restore(e.SinkArch, e.PrevPhys)
			c.prf.Free(e.SinkPhys)
		}
		if e.SPSink {
			c.rat.Restore(spArch, e.SPPrevPhys)
			c.prf.Free(e.SPPhys)
		}
	}

	for i := 0; i < c.rs.Capacity(); i++ {
		c.rs.Release(i)
	}
	for i := 0; i < c.eu.Len(); i++ {
		c.eu.Release(i)
	}
	for _, idx := range c.lfb.All() {
		c.lfb.Release(idx)
	}
	c.sb.TruncateToCommittedPrefix()
	c.rob.Clear()
	c.iq.Clear()
	c.pc = actualTarget

	c.tracef(c.cfg.Trace.Cycle, "cycle %d: squash, redirecting fetch to %d\n", c.cycle, actualTarget)
}

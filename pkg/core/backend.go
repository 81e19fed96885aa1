package core

import "github.com/eberaud/oooarm/pkg/isa"

// retireStep commits up to retire_n_wide ROB entries, strictly in program
// order starting at the head (spec.md §4.3's in-order-commit invariant).
// An entry blocks retirement of everything behind it until it reaches
// ROBExecuted (and, for a store, until its SB entry has a value) -- a
// single stuck instruction stalls the whole window, matching a real ROB.
func (c *CPU) retireStep() (bool, error) {
	changed := false
	for i := uint8(0); i < c.cfg.RetireNWide; i++ {
		if c.rob.Empty() {
			break
		}
		e := c.rob.At(c.rob.Head())
		if e.State != ROBExecuted {
			break
		}
		if e.IsStore && c.sb.At(e.SBIndex).State != SBValueReady {
			break
		}

		if e.HasSink {
			c.arf.Set(e.SinkArch, c.prf.Get(e.SinkPhys).Value)
			c.prf.Free(e.PrevPhys)
		}
		if e.SPSink {
			spArch := ArchIndex(isa.RegSP, c.archRegCount)
			c.arf.Set(spArch, c.prf.Get(e.SPPhys).Value)
			c.prf.Free(e.SPPrevPhys)
		}
		if e.IsStore {
			c.sb.At(e.SBIndex).State = SBCommitted
		}
		if e.Op == isa.PRINTR {
			val := c.arf.Get(ArchIndex(e.PrintReg, c.archRegCount))
			c.printed = append(c.printed, PrintEvent{Cycle: c.cycle, Reg: isa.RegName(e.PrintReg), Value: val})
			c.tracef(c.cfg.Trace.Retire, "cycle %d: PRINTR %s = %d\n", c.cycle, isa.RegName(e.PrintReg), val)
		}

		mispredicted := e.IsBranch && e.Mispredicted
		actualTarget := e.ActualTarget
		op := e.Op

		c.rob.RetireHead()
		c.retired++
		changed = true
		c.tracef(c.cfg.Trace.Retire, "cycle %d: retire %s\n", c.cycle, isa.Mnemonic(op))

		if mispredicted {
			c.squash(actualTarget)
			break
		}
	}
	return changed, nil
}

// writebackStep advances every busy execution unit by one cycle and
// completes those that finish: computing the result, writing it into the
// PRF, and broadcasting it on the result bus so waiting RS operands wake up
// (spec.md §4.5). Loads are not handled here -- they execute through the
// LFB in the memory-subsystem tick instead.
func (c *CPU) writebackStep() (bool, error) {
	changed := false
	for i := 0; i < c.eu.Len(); i++ {
		s := c.eu.At(i)
		if !s.Busy {
			continue
		}
		changed = true
		s.Remaining--
		if s.Remaining > 0 {
			continue
		}

		e := c.rob.At(s.ROBIndex)
		c.tracef(c.cfg.Trace.Execute, "cycle %d: complete rob=%d %s\n", c.cycle, s.ROBIndex, isa.Mnemonic(s.Op))

		switch {
		case s.Op == isa.NOP || s.Op == isa.PRINTR:
			e.State = ROBExecuted

		case isa.IsBranch(s.Op):
			taken, target := resolveBranch(s)
			if !taken {
				target = s.Addr + 1
			}
			e.Taken = taken
			e.ActualTarget = target
			e.Mispredicted = e.PredictedTaken != taken || (taken && e.PredictedTarget != target)
			if s.HasSink {
				// BL: LR = return address (the instruction after the call).
				val := isa.Word(s.Addr + 1)
				c.prf.Write(s.SinkPhys, val)
				c.rs.ObserveResultBus(s.SinkPhys, val)
			}
			e.State = ROBExecuted

		case s.Op == isa.CMP:
			flags := flagsFromCompare(s.Src[0], s.Src[1])
			c.prf.Write(s.SinkPhys, flags)
			c.rs.ObserveResultBus(s.SinkPhys, flags)
			e.State = ROBExecuted

		case isa.IsStore(s.Op):
			var addr uint32
			var value isa.Word
			if s.Op == isa.STR {
				addr = uint32(s.Src[0])
				value = s.Src[1]
			} else { // PUSH
				newSP, err := execALU(isa.PUSH, s.Src[0], 0)
				if err != nil {
					return changed, &Trap{Cycle: c.cycle, ROBIdx: s.ROBIndex, Line: s.Line, Kind: "arithmetic", Message: err.Error()}
				}
				addr = uint32(newSP)
				value = s.Src[1]
				c.prf.Write(s.SinkPhys, newSP)
				c.rs.ObserveResultBus(s.SinkPhys, newSP)
			}
			sb := c.sb.At(e.SBIndex)
			sb.Address = addr
			sb.Value = value
			sb.State = SBValueReady
			e.State = ROBExecuted

		default:
			val, err := execALU(s.Op, s.Src[0], s.Src[1])
			if err != nil {
				return changed, &Trap{Cycle: c.cycle, ROBIdx: s.ROBIndex, Line: s.Line, Kind: "arithmetic", Message: err.Error()}
			}
			if s.HasSink {
				c.prf.Write(s.SinkPhys, val)
				c.rs.ObserveResultBus(s.SinkPhys, val)
			}
			e.State = ROBExecuted
		}

		c.eu.Release(i)
	}
	return changed, nil
}

// resolveBranch evaluates a branch's actual condition and target from its
// captured EU operands. Per-opcode operand shape matches pkg/asm/build.go's
// builder: conditional branches carry {target, cpsr}; CBZ/CBNZ carry
// {regVal, target}; B/BL/BX/RET are unconditional with only a target (or,
// for BX/RET, the dynamic LR value) in Src[0].
func resolveBranch(s *EUSlot) (taken bool, target uint32) {
	switch s.Op {
	case isa.B, isa.BL, isa.BX, isa.RET:
		return true, uint32(s.Src[0])
	case isa.CBZ, isa.CBNZ:
		return evalBranch(s.Op, 0, s.Src[0]), uint32(s.Src[1])
	default: // BEQ, BNE, BLT, BLE, BGT, BGE
		return evalBranch(s.Op, s.Src[1], 0), uint32(s.Src[0])
	}
}

// dispatchStep hands ready reservation-station slots to a free execution
// unit, or -- for loads -- to a free load fill buffer, honoring
// store-to-load forwarding and the address/value two-stage readiness of
// the store buffer (spec.md §4.4). A store's address is propagated into
// its SB entry as soon as it is known, independent of the store's value,
// so a younger load can already observe "same address, not yet ready" and
// stall instead of incorrectly reading stale memory.
func (c *CPU) dispatchStep() bool {
	changed := false

	for i := 0; i < c.rs.Capacity(); i++ {
		s := c.rs.At(i)
		if !s.Occupied || !isa.IsStore(s.Op) || !s.Src[0].Ready {
			continue
		}
		e := c.rob.At(s.ROBIndex)
		sb := c.sb.At(e.SBIndex)
		if sb.State != SBAllocated {
			continue
		}
		addr := uint32(s.Src[0].Value)
		if s.Op == isa.PUSH {
			addr--
		}
		sb.Address = addr
		sb.State = SBAddressReady
		changed = true
	}

	dispatched := uint8(0)
	for _, idx := range c.rs.ReadyIndicesOldestFirst() {
		if dispatched >= c.cfg.DispatchNWide {
			break
		}
		s := c.rs.At(idx)
		e := c.rob.At(s.ROBIndex)

		if isa.IsLoad(s.Op) {
			addr := uint32(s.Src[0].Value)
			if e.SPSink {
				newSP := s.Src[0].Value + 1
				c.prf.Write(e.SPPhys, newSP)
				c.rs.ObserveResultBus(e.SPPhys, newSP)
			}
			if older, ok := c.sb.OlderAddressReady(addr, s.Seq); ok {
				if older.State == SBAddressReady {
					continue // same address, older store's value not ready: stall
				}
				c.prf.Write(s.SinkPhys, older.Value)
				c.rs.ObserveResultBus(s.SinkPhys, older.Value)
				e.State = ROBExecuted
				c.rs.Release(idx)
				dispatched++
				changed = true
				c.tracef(c.cfg.Trace.Dispatch, "cycle %d: forward rob=%d addr=%d\n", c.cycle, s.ROBIndex, addr)
				continue
			}
			lfbIdx, ok := c.lfb.FreeSlot()
			if !ok {
				continue
			}
			c.lfb.Occupy(lfbIdx, LFBEntry{
				State:     LFBFilling,
				Address:   addr,
				DestPhys:  s.SinkPhys,
				ROBIndex:  s.ROBIndex,
				Remaining: c.cfg.LoadLatency,
				Seq:       s.Seq,
			})
			e.State = ROBExecuting
			c.rs.Release(idx)
			dispatched++
			changed = true
			c.tracef(c.cfg.Trace.Dispatch, "cycle %d: dispatch rob=%d to lfb addr=%d\n", c.cycle, s.ROBIndex, addr)
			continue
		}

		euIdx, ok := c.eu.FreeSlot()
		if !ok {
			continue
		}
		c.eu.Occupy(euIdx, EUSlot{
			ROBIndex:  s.ROBIndex,
			RSIndex:   idx,
			Op:        s.Op,
			Addr:      s.Addr,
			Remaining: isa.Catalog[s.Op].Latency,
			Src:       [2]isa.Word{s.Src[0].Value, s.Src[1].Value},
			HasSink:   s.HasSink,
			SinkPhys:  s.SinkPhys,
			Line:      e.Line,
		})
		e.State = ROBExecuting
		c.rs.Release(idx)
		dispatched++
		changed = true
		c.tracef(c.cfg.Trace.Dispatch, "cycle %d: dispatch rob=%d to eu %s\n", c.cycle, s.ROBIndex, isa.Mnemonic(s.Op))
	}
	return changed
}

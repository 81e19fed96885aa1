package core

import "github.com/eberaud/oooarm/pkg/isa"

// fetchStep fetches up to frontend_n_wide instructions into the IQ, the
// first half of spec.md §4.2's split between frontend_n_wide (fetch) and
// issue_n_wide (decode/rename/dispatch draining the IQ) -- the two widths
// spec.md names without pinning to one stage each.
//
// Branch prediction is static and cheap: unconditional B/BL are always
// taken to their resolved target; BX/RET consult the RAS; everything else
// (conditional branches, CBZ/CBNZ) predicts not-taken. A wrong guess is
// only ever discovered and corrected at retire, via squash.
func (c *CPU) fetchStep() bool {
	changed := false
	for i := uint8(0); i < c.cfg.FrontendNWide; i++ {
		if c.iq.Full() {
			break
		}
		if int(c.pc) >= len(c.program.Code) {
			break
		}
		addr := c.pc
		instr := c.program.Code[addr]

		predictedTaken := false
		predictedTarget := addr + 1

		switch {
		case isa.IsUnconditional(instr.Op):
			predictedTaken = true
			predictedTarget = instr.Src[0].Addr
		case isa.UsesRAS(instr.Op):
			if t, ok := c.ras.Pop(); ok {
				predictedTaken = true
				predictedTarget = t
			}
		}

		if instr.Op == isa.BL {
			c.ras.Push(addr + 1)
		}

		c.iq.Push(IQEntry{
			Instr:           instr,
			Addr:            addr,
			PredictedTaken:  predictedTaken,
			PredictedTarget: predictedTarget,
		})
		c.pc = predictedTarget
		changed = true
		c.tracef(c.cfg.Trace.Decode, "cycle %d: fetch @%d %s\n", c.cycle, addr, isa.Disassemble(instr))
	}
	return changed
}

// renameStep drains up to issue_n_wide instructions from the IQ: resolves
// source operands against the current RAT/PRF, renames the sink (and POP's
// extra SP write) to a fresh physical register, and allocates ROB/RS (and
// SB, for stores) entries -- all stamped with one shared program-order
// sequence number so RS dispatch priority and store/load forwarding agree
// on what "older" means (spec.md §9's P4 invariant).
//
// A candidate that cannot get every resource it needs this cycle (ROB slot,
// RS slot, a free physical register for its sink(s), an SB slot if it is a
// store) stays in the IQ and is retried next cycle.
func (c *CPU) renameStep() bool {
	changed := false
	for i := uint8(0); i < c.cfg.IssueNWide; i++ {
		if c.iq.Empty() || c.rob.Full() {
			break
		}
		iqe := c.iq.Peek()
		ins := iqe.Instr

		hasSink := !ins.Sink.IsUnused()
		isStore := isa.IsStore(ins.Op)

		needPhys := 0
		if hasSink {
			needPhys++
		}
		if ins.SPSink {
			needPhys++
		}
		if needPhys > c.prf.NumFree() {
			break
		}
		if isStore && c.sb.Full() {
			break
		}
		rsIdx, ok := c.rs.FreeSlot()
		if !ok {
			break
		}

		c.iq.Pop()
		c.progSeq++
		seq := c.progSeq

		src0 := c.resolveSrcOperand(ins.Src[0])
		src1 := c.resolveSrcOperand(ins.Src[1])

		entry := ROBEntry{
			Op:   ins.Op,
			Line: ins.Line,
			Seq:  seq,
		}
		if ins.Op == isa.PRINTR {
			entry.PrintReg = ins.Src[0].Reg
		}
		if isa.IsBranch(ins.Op) {
			entry.IsBranch = true
			entry.PredictedTaken = iqe.PredictedTaken
			entry.PredictedTarget = iqe.PredictedTarget
		}

		var sinkPhys int
		if hasSink {
			archIdx := ArchIndex(ins.Sink.Reg, c.archRegCount)
			phys, _ := c.prf.Alloc()
			prev := c.rat.Set(archIdx, phys)
			entry.HasSink = true
			entry.SinkArch = archIdx
			entry.SinkPhys = phys
			entry.PrevPhys = prev
			sinkPhys = phys
		}
		if ins.SPSink {
			spArch := ArchIndex(isa.RegSP, c.archRegCount)
			phys, _ := c.prf.Alloc()
			prev := c.rat.Set(spArch, phys)
			entry.SPSink = true
			entry.SPPhys = phys
			entry.SPPrevPhys = prev
		}

		if isStore {
			entry.IsStore = true
		}

		robIdx := c.rob.Allocate(entry)

		if isStore {
			sbIdx := c.sb.Allocate(robIdx, seq)
			c.rob.At(robIdx).SBIndex = sbIdx
		}

		c.rs.Allocate(rsIdx, RSSlot{
			ROBIndex: robIdx,
			Op:       ins.Op,
			Addr:     iqe.Addr,
			Src:      [2]SrcOperand{src0, src1},
			HasSink:  hasSink,
			SinkPhys: sinkPhys,
			Seq:      seq,
		})

		changed = true
		c.tracef(c.cfg.Trace.Issue, "cycle %d: rename rob=%d seq=%d %s\n", c.cycle, robIdx, seq, isa.Disassemble(ins))
	}
	return changed
}

// resolveSrcOperand snapshots an operand's value if already known
// (immediate, resolved address, or a register whose PRF slot already holds
// a value) or captures the physical-register tag to wait for. Must run
// before the instruction's own sink is renamed, so an instruction that
// reads and writes the same architectural register (INC, PUSH's SP read)
// observes the OLD mapping as its source.
func (c *CPU) resolveSrcOperand(o isa.Operand) SrcOperand {
	switch o.Kind {
	case isa.OperandImmediate:
		return SrcOperand{Ready: true, Value: o.Imm}
	case isa.OperandMemAddr, isa.OperandCodeAddr:
		return SrcOperand{Ready: true, Value: isa.Word(o.Addr)}
	case isa.OperandRegister:
		archIdx := ArchIndex(o.Reg, c.archRegCount)
		phys := c.rat.Get(archIdx)
		slot := c.prf.Get(phys)
		if slot.HasValue {
			return SrcOperand{Ready: true, Value: slot.Value}
		}
		return SrcOperand{Tag: phys}
	default:
		return SrcOperand{Ready: true}
	}
}

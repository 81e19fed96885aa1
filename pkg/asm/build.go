package asm

import (
	"github.com/eberaud/oooarm/pkg/isa"
)

// build turns one rawInstruction into its final isa.Instruction, resolving
// label/data references and checking operand arity against the opcode's
// expected shape. Mirrors the teacher's pkg/cpu/exec.go in spirit: one
// big switch per opcode, here building an Instruction rather than
// executing one.
func build(ri rawInstruction, dataItems map[string]isa.DataItem, labels map[string]uint32) (isa.Instruction, error) {
	resolve := func(ro rawOperand) (isa.Operand, error) {
		switch ro.kind {
		case rawReg:
			return isa.Reg(ro.reg), nil
		case rawImm:
			return isa.Imm(ro.imm), nil
		case rawDataRef:
			item, ok := dataItems[ro.name]
			if !ok {
				return isa.Operand{}, &AnalysisError{Line: ri.line, Message: "undefined data symbol " + ro.name}
			}
			return isa.MemAddr(item.Offset), nil
		case rawCodeRef:
			addr, ok := labels[ro.name]
			if !ok {
				return isa.Operand{}, &AnalysisError{Line: ri.line, Message: "undefined label " + ro.name}
			}
			return isa.CodeAddr(addr), nil
		}
		return isa.Operand{}, &AnalysisError{Line: ri.line, Message: "malformed operand"}
	}

	need := func(n int) error {
		if len(ri.args) != n {
			return &AnalysisError{Line: ri.line, Message: "wrong operand count for " + isa.Mnemonic(ri.op)}
		}
		return nil
	}

	ins := isa.Instruction{Op: ri.op, Line: ri.line, Latency: isa.Catalog[ri.op].Latency}

	threeOp := func() error {
		if err := need(3); err != nil {
			return err
		}
		sink, err := resolve(ri.args[0])
		if err != nil {
			return err
		}
		s1, err := resolve(ri.args[1])
		if err != nil {
			return err
		}
		s2, err := resolve(ri.args[2])
		if err != nil {
			return err
		}
		ins.Sink, ins.Src[0], ins.Src[1] = sink, s1, s2
		return nil
	}
	twoOp := func() error {
		if err := need(2); err != nil {
			return err
		}
		sink, err := resolve(ri.args[0])
		if err != nil {
			return err
		}
		s1, err := resolve(ri.args[1])
		if err != nil {
			return err
		}
		ins.Sink, ins.Src[0] = sink, s1
		return nil
	}

	switch ri.op {
	case isa.ADD, isa.SUB, isa.RSB, isa.MUL, isa.DIV, isa.MOD, isa.AND, isa.OR, isa.XOR:
		if err := threeOp(); err != nil {
			return isa.Instruction{}, err
		}
	case isa.NEG, isa.NOT, isa.MOV:
		if err := twoOp(); err != nil {
			return isa.Instruction{}, err
		}
	case isa.INC, isa.DEC:
		if err := need(1); err != nil {
			return isa.Instruction{}, err
		}
		sink, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Sink, ins.Src[0] = sink, sink
	case isa.CMP:
		if err := need(2); err != nil {
			return isa.Instruction{}, err
		}
		s0, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		s1, err := resolve(ri.args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0], ins.Src[1] = s0, s1
		ins.Sink = isa.Reg(isa.RegCPSR)
	case isa.LDR:
		if err := twoOp(); err != nil {
			return isa.Instruction{}, err
		}
	case isa.STR:
		// STR value, [addr]
		if err := need(2); err != nil {
			return isa.Instruction{}, err
		}
		value, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		addr, err := resolve(ri.args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0], ins.Src[1] = addr, value
	case isa.B:
		if err := need(1); err != nil {
			return isa.Instruction{}, err
		}
		target, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0] = target
	case isa.BEQ, isa.BNE, isa.BLT, isa.BLE, isa.BGT, isa.BGE:
		if err := need(1); err != nil {
			return isa.Instruction{}, err
		}
		target, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0] = target
		ins.Src[1] = isa.Reg(isa.RegCPSR)
	case isa.BL:
		if err := need(1); err != nil {
			return isa.Instruction{}, err
		}
		target, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0] = target
		ins.Sink = isa.Reg(isa.RegLR)
	case isa.BX, isa.RET:
		if err := need(0); err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0] = isa.Reg(isa.RegLR)
	case isa.CBZ, isa.CBNZ:
		if err := need(2); err != nil {
			return isa.Instruction{}, err
		}
		reg, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		target, err := resolve(ri.args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0], ins.Src[1] = reg, target
	case isa.PUSH:
		if err := need(1); err != nil {
			return isa.Instruction{}, err
		}
		value, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0] = isa.Reg(isa.RegSP)
		ins.Src[1] = value
		ins.Sink = isa.Reg(isa.RegSP)
	case isa.POP:
		if err := need(1); err != nil {
			return isa.Instruction{}, err
		}
		dst, err := resolve(ri.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		ins.Src[0] = isa.Reg(isa.RegSP)
		ins.Sink = dst
		ins.SPSink = true
	case isa.NOP, isa.PRINTR:
		if ri.op == isa.PRINTR {
			if err := need(1); err != nil {
				return isa.Instruction{}, err
			}
			reg, err := resolve(ri.args[0])
			if err != nil {
				return isa.Instruction{}, err
			}
			ins.Src[0] = reg
		} else if err := need(0); err != nil {
			return isa.Instruction{}, err
		}
	default:
		return isa.Instruction{}, &AnalysisError{Line: ri.line, Message: "unhandled opcode in builder"}
	}

	return ins, nil
}

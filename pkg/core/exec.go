package core

import (
	"fmt"

	"github.com/eberaud/oooarm/pkg/isa"
)

// execALU computes the result of an arithmetic/logical/data-movement op,
// mirroring the teacher's pkg/cpu/exec.go in shape: one big per-opcode
// switch mutating nothing but returning a value (here, because results
// flow through the PRF/result-bus rather than a single mutable State).
func execALU(op isa.Opcode, a, b isa.Word) (isa.Word, error) {
	switch op {
	case isa.ADD:
		return a + b, nil
	case isa.SUB:
		return a - b, nil
	case isa.RSB:
		return b - a, nil
	case isa.MUL:
		return a * b, nil
	case isa.DIV:
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return a / b, nil
	case isa.MOD:
		if b == 0 {
			return 0, fmt.Errorf("divide by zero")
		}
		return a % b, nil
	case isa.NEG:
		return -a, nil
	case isa.AND:
		return a & b, nil
	case isa.OR:
		return a | b, nil
	case isa.XOR:
		return a ^ b, nil
	case isa.NOT:
		return ^a, nil
	case isa.INC:
		return a + 1, nil
	case isa.DEC:
		return a - 1, nil
	case isa.MOV:
		return a, nil
	case isa.PUSH:
		return a - 1, nil // new SP; a is old SP
	default:
		return 0, fmt.Errorf("execALU: unhandled opcode %s", isa.Mnemonic(op))
	}
}

// flagsFromCompare computes a new CPSR value (N,Z,C,V packed) for a-b.
func flagsFromCompare(a, b isa.Word) isa.Word {
	result := a - b
	var flags isa.Word
	if result == 0 {
		flags |= 1 << isa.FlagZ
	}
	if result < 0 {
		flags |= 1 << isa.FlagN
	}
	if a >= b {
		flags |= 1 << isa.FlagC
	}
	// Overflow: operands differ in sign and result's sign differs from a's.
	if (a < 0) != (b < 0) && (result < 0) != (a < 0) {
		flags |= 1 << isa.FlagV
	}
	return flags
}

func flagSet(cpsr isa.Word, bit isa.FlagBit) bool {
	return cpsr&(1<<bit) != 0
}

// evalBranch decides whether a (possibly conditional) branch is taken.
func evalBranch(op isa.Opcode, cpsr isa.Word, regVal isa.Word) bool {
	switch op {
	case isa.B, isa.BL, isa.BX, isa.RET:
		return true
	case isa.BEQ:
		return flagSet(cpsr, isa.FlagZ)
	case isa.BNE:
		return !flagSet(cpsr, isa.FlagZ)
	case isa.BLT:
		return flagSet(cpsr, isa.FlagN) != flagSet(cpsr, isa.FlagV)
	case isa.BLE:
		return flagSet(cpsr, isa.FlagZ) || flagSet(cpsr, isa.FlagN) != flagSet(cpsr, isa.FlagV)
	case isa.BGT:
		return !flagSet(cpsr, isa.FlagZ) && flagSet(cpsr, isa.FlagN) == flagSet(cpsr, isa.FlagV)
	case isa.BGE:
		return flagSet(cpsr, isa.FlagN) == flagSet(cpsr, isa.FlagV)
	case isa.CBZ:
		return regVal == 0
	case isa.CBNZ:
		return regVal != 0
	default:
		return false
	}
}

package isa

// Word is the simulated machine word: signed, wraps on overflow.
type Word int32

// RegID identifies an architectural register.
type RegID uint8

// OperandKind is the tag of the Operand sum type. spec.md requires operands
// be modeled as a genuine tagged union, never as an untyped numeric field.
type OperandKind uint8

const (
	OperandUnused OperandKind = iota
	OperandRegister
	OperandMemAddr
	OperandCodeAddr
	OperandImmediate
)

// Operand is a tagged union: register id, resolved data address, resolved
// code address, immediate constant, or unused. Exactly one of Reg/Addr/Imm
// is meaningful, selected by Kind.
type Operand struct {
	Kind Kind
	Reg  RegID
	Addr uint32
	Imm  Word
}

// Kind is an alias so call sites read Operand{Kind: isa.OperandRegister, ...}.
type Kind = OperandKind

// Reg builds a register operand.
func Reg(r RegID) Operand { return Operand{Kind: OperandRegister, Reg: r} }

// MemAddr builds a resolved data-address operand (the target of "=label").
func MemAddr(addr uint32) Operand { return Operand{Kind: OperandMemAddr, Addr: addr} }

// CodeAddr builds a resolved branch-target operand.
func CodeAddr(addr uint32) Operand { return Operand{Kind: OperandCodeAddr, Addr: addr} }

// Imm builds an immediate-constant operand.
func Imm(v Word) Operand { return Operand{Kind: OperandImmediate, Imm: v} }

// Unused is the sink/operand value for instructions with no such slot.
var Unused = Operand{Kind: OperandUnused}

// IsUnused reports whether the operand carries no value.
func (o Operand) IsUnused() bool { return o.Kind == OperandUnused }

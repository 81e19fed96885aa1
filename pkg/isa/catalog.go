package isa

// Info describes the static properties of an opcode: its latency in cycles
// and whether it writes a primary sink. Grounded on the teacher's
// pkg/inst.Catalog (a [OpCodeCount]Info array populated in init()),
// generalized from per-byte Z80 timing to the latency table of spec.md §4.5.
type Info struct {
	Mnemonic string
	Latency  int
	HasSink  bool
}

// Catalog maps every Opcode to its static Info.
var Catalog [OpcodeCount]Info

func init() {
	set := func(op Opcode, latency int, hasSink bool) {
		Catalog[op] = Info{Mnemonic: Mnemonic(op), Latency: latency, HasSink: hasSink}
	}

	// ADD/SUB/MOV/CMP/logical = 1 (spec.md §4.5)
	for _, op := range []Opcode{ADD, SUB, RSB, MOV, AND, OR, XOR, NOT, NEG, INC, DEC} {
		set(op, 1, true)
	}
	set(CMP, 1, true) // writes the renamed CPSR "sink", not a general register

	set(MUL, 3, true)
	set(DIV, 6, true)
	set(MOD, 6, true)

	set(LDR, 3, true)
	set(STR, 1, false)

	// Branches = 1 (resolved/evaluated in one EU cycle).
	for _, op := range []Opcode{B, BEQ, BNE, BLT, BLE, BGT, BGE, CBZ, CBNZ, BX, RET} {
		set(op, 1, false)
	}
	set(BL, 1, true) // writes LR

	set(PUSH, 1, true) // writes the new SP
	set(POP, 1, true)

	set(NOP, 1, false)
	set(PRINTR, 1, false)
}

// Disassemble renders an instruction roughly as the assembly that produced
// it, for trace output. Mirrors the teacher's pkg/inst.Disassemble in
// purpose, not in format (the ISA and operand shapes differ entirely).
func Disassemble(ins Instruction) string {
	m := Mnemonic(ins.Op)
	operands := ""
	if !ins.Sink.IsUnused() {
		operands += operandString(ins.Sink)
	}
	for _, src := range ins.Src {
		if src.IsUnused() {
			continue
		}
		if operands != "" {
			operands += ","
		}
		operands += operandString(src)
	}
	if operands == "" {
		return m
	}
	return m + " " + operands
}

func operandString(o Operand) string {
	switch o.Kind {
	case OperandRegister:
		return regName(o.Reg)
	case OperandImmediate:
		return "#" + itoa(int64(o.Imm))
	case OperandMemAddr:
		return "=" + itoa(int64(o.Addr))
	case OperandCodeAddr:
		return "@" + itoa(int64(o.Addr))
	default:
		return "-"
	}
}

// RegName renders a register id the way assembly source would write it,
// for trace output and PRINTR reporting.
func RegName(r RegID) string { return regName(r) }

func regName(r RegID) string {
	switch r {
	case RegLR:
		return "lr"
	case RegSP:
		return "sp"
	case RegCPSR:
		return "cpsr"
	default:
		return "r" + itoa(int64(r))
	}
}

// itoa avoids pulling in strconv for a few call sites that never need its
// full surface (bases, errors); kept local the way the teacher keeps
// appendHex8/appendHex16 local to pkg/inst/catalog.go.
func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

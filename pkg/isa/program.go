package isa

// DataItem is one named, statically-initialized memory word.
type DataItem struct {
	Offset  uint32
	Initial Word
}

// Program is an assembled unit: code addressed from origin 0, plus the
// symbol table of data items preloaded into memory at init. DataOrder
// records the names in their original .data declaration order, since
// DataItems is a map and Go map iteration is unordered.
type Program struct {
	Code      []Instruction
	DataItems map[string]DataItem
	DataOrder []string
}

// String renders the whole program as one disassembly listing, used by
// `oooarm run --dump` and tests that want a readable diff. Data items are
// printed first, in source declaration order, ahead of the code.
func (p Program) String() string {
	out := ""
	for _, name := range p.DataOrder {
		item := p.DataItems[name]
		out += ".data " + name + " = " + itoa(int64(item.Initial)) + " @" + itoa(int64(item.Offset)) + "\n"
	}
	for i, ins := range p.Code {
		out += itoa(int64(i)) + ": " + Disassemble(ins) + "\n"
	}
	return out
}

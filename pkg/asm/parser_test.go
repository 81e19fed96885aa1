package asm

import (
	"testing"

	"github.com/eberaud/oooarm/pkg/isa"
)

func TestParseSimpleProgram(t *testing.T) {
	src := `
.data
counter: .dword 0
.text
MOV r0, #5;
ADD r1, r0, #1;
STR r1, [r0];
PRINTR r1;
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(prog.Code) != 4 {
		t.Fatalf("len(Code) = %d, want 4", len(prog.Code))
	}
	if prog.Code[0].Op != isa.MOV {
		t.Errorf("Code[0].Op = %v, want MOV", prog.Code[0].Op)
	}
	if item, ok := prog.DataItems["counter"]; !ok || item.Offset != 0 {
		t.Errorf("DataItems[counter] = %+v, ok=%v", item, ok)
	}
	if len(prog.DataOrder) != 1 || prog.DataOrder[0] != "counter" {
		t.Errorf("DataOrder = %v, want [counter]", prog.DataOrder)
	}
}

func TestParseDataOrderMatchesDeclarationOrder(t *testing.T) {
	src := `
.data
zeta: .dword 1
alpha: .dword 2
.text
NOP;
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []string{"zeta", "alpha"}
	if len(prog.DataOrder) != len(want) {
		t.Fatalf("DataOrder = %v, want %v", prog.DataOrder, want)
	}
	for i := range want {
		if prog.DataOrder[i] != want[i] {
			t.Errorf("DataOrder[%d] = %s, want %s", i, prog.DataOrder[i], want[i])
		}
	}
}

func TestParseLabelsAndBranches(t *testing.T) {
	src := `
.text
loop:
ADD r0, r0, #1;
CMP r0, r0;
BNE loop;
RET;
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	bne := prog.Code[2]
	if bne.Op != isa.BNE {
		t.Fatalf("Code[2].Op = %v, want BNE", bne.Op)
	}
	if bne.Src[0].Kind != isa.OperandCodeAddr || bne.Src[0].Addr != 0 {
		t.Errorf("BNE target = %+v, want code address 0", bne.Src[0])
	}
}

func TestParsePushPopOperandShape(t *testing.T) {
	src := `
.text
PUSH r0;
POP r1;
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	push := prog.Code[0]
	if push.Sink.Kind != isa.OperandRegister || push.Sink.Reg != isa.RegSP {
		t.Errorf("PUSH sink = %+v, want sp", push.Sink)
	}
	if push.Src[0].Reg != isa.RegSP {
		t.Errorf("PUSH Src[0] = %+v, want sp", push.Src[0])
	}

	pop := prog.Code[1]
	if !pop.SPSink {
		t.Errorf("POP.SPSink = false, want true")
	}
	if pop.Sink.Reg != 1 {
		t.Errorf("POP sink = %+v, want r1", pop.Sink)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"undefined label", ".text\nB missing;\n"},
		{"undefined data symbol", ".text\nLDR r0, =missing;\n"},
		{"wrong arity", ".text\nADD r0, r1;\n"},
		{"unknown mnemonic", ".text\nFROB r0;\n"},
		{"missing text section", ".data\nx: .dword 1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.src); err == nil {
				t.Errorf("Parse(%q) returned no error, want one", tc.src)
			}
		})
	}
}

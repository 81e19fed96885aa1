package isa

import (
	"strings"
	"testing"
)

func TestProgramStringListsDataInDeclarationOrder(t *testing.T) {
	prog := Program{
		Code: []Instruction{
			{Op: NOP},
		},
		DataItems: map[string]DataItem{
			"zeta":  {Offset: 0, Initial: 1},
			"alpha": {Offset: 1, Initial: 2},
		},
		DataOrder: []string{"zeta", "alpha"},
	}

	out := prog.String()
	zetaIdx := strings.Index(out, "zeta")
	alphaIdx := strings.Index(out, "alpha")
	if zetaIdx < 0 || alphaIdx < 0 {
		t.Fatalf("String() = %q, want both data items present", out)
	}
	if zetaIdx > alphaIdx {
		t.Errorf("String() printed alpha before zeta, want declaration order: %q", out)
	}
	if !strings.Contains(out, "0: ") {
		t.Errorf("String() = %q, want the code listing to follow the data items", out)
	}
}

func TestProgramStringWithNoDataItems(t *testing.T) {
	prog := Program{Code: []Instruction{{Op: NOP}}, DataItems: map[string]DataItem{}}
	out := prog.String()
	if !strings.HasPrefix(out, "0: ") {
		t.Errorf("String() = %q, want to start directly with the code listing when there is no data", out)
	}
}

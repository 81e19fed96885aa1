package bench

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eberaud/oooarm/pkg/asm"
	"github.com/eberaud/oooarm/pkg/config"
)

func mustParse(t *testing.T, src string) Job {
	t.Helper()
	prog, err := asm.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return Job{Program: prog, Config: config.Default(), MaxCycles: 1000}
}

func TestPoolRunCollectsAllOutcomes(t *testing.T) {
	jobs := []Job{mustParse(t, `
.text
MOV r0, #1;
PRINTR r0;
`), mustParse(t, `
.text
MOV r0, #2;
PRINTR r0;
`)}
	jobs[0].Name = "one"
	jobs[1].Name = "two"

	pool := NewPool(2)
	outcomes := pool.Run(context.Background(), jobs, false)
	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}

	byName := map[string]Outcome{}
	for _, o := range outcomes {
		byName[o.Name] = o
	}
	for _, name := range []string{"one", "two"} {
		o, ok := byName[name]
		if !ok {
			t.Fatalf("missing outcome for job %q", name)
		}
		if o.Err != nil {
			t.Errorf("job %q: Err = %v, want nil", name, o.Err)
		}
		if len(o.Prints) != 1 {
			t.Errorf("job %q: Prints = %+v, want 1 entry", name, o.Prints)
		}
	}
}

func TestPoolRunReportsJobErrors(t *testing.T) {
	job := mustParse(t, `
.text
MOV r0, #0;
DIV r1, r0, r0;
`)
	job.Name = "divzero"

	pool := NewPool(1)
	outcomes := pool.Run(context.Background(), []Job{job}, false)
	if len(outcomes) != 1 {
		t.Fatalf("len(outcomes) = %d, want 1", len(outcomes))
	}
	if outcomes[0].Err == nil {
		t.Errorf("outcomes[0].Err = nil, want a divide-by-zero trap wrapped in an error")
	}
}

func TestNewPoolDefaultsWorkerCount(t *testing.T) {
	p := NewPool(0)
	if p.NumWorkers <= 0 {
		t.Errorf("NewPool(0).NumWorkers = %d, want > 0", p.NumWorkers)
	}
}

func TestDiscoverProgramsFindsOnlyAsmFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.asm", "alpha.asm", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(".text\nNOP;\n"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}

	got, err := DiscoverPrograms(dir)
	if err != nil {
		t.Fatalf("DiscoverPrograms: %v", err)
	}
	want := []string{filepath.Join(dir, "alpha.asm"), filepath.Join(dir, "zeta.asm")}
	if len(got) != len(want) {
		t.Fatalf("DiscoverPrograms() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DiscoverPrograms()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPoolRunSortsByIPCDescending(t *testing.T) {
	slow := mustParse(t, `
.text
MOV r0, #1;
MOV r0, #1;
MOV r0, #1;
PRINTR r0;
`)
	slow.Name = "slow"
	fast := mustParse(t, `
.text
MOV r0, #1;
PRINTR r0;
`)
	fast.Name = "fast"

	pool := NewPool(2)
	outcomes := pool.Run(context.Background(), []Job{slow, fast}, false)
	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
	if outcomes[0].IPC < outcomes[1].IPC {
		t.Errorf("outcomes not sorted by IPC descending: %+v", outcomes)
	}
}

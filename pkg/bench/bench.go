// Package bench runs many programs through the simulator concurrently and
// collects their outcomes, the way pkg/search.WorkerPool fans a search out
// across goroutines and aggregates into a result.Table with a periodic
// progress ticker.
package bench

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eberaud/oooarm/pkg/config"
	"github.com/eberaud/oooarm/pkg/core"
	"github.com/eberaud/oooarm/pkg/isa"
)

// Job is one program to simulate.
type Job struct {
	Name      string
	Program   isa.Program
	Config    config.Config
	MaxCycles uint64
}

// Outcome is one job's result.
type Outcome struct {
	Name    string
	Cycles  uint64
	Prints  []core.PrintEvent
	Retired int
	IPC     float64
	Err     error
}

// DiscoverPrograms finds every *.asm file directly inside dir, sorted by
// name so bench runs are reproducible across filesystems.
func DiscoverPrograms(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.asm"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s for programs: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Pool runs jobs across a fixed number of worker goroutines.
type Pool struct {
	NumWorkers int

	mu       sync.Mutex
	outcomes []Outcome
	done     atomic.Int64
}

// NewPool builds a Pool. numWorkers <= 0 means runtime.NumCPU().
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers}
}

// Run executes every job, printing a progress line every two seconds when
// verbose is set (mirroring pkg/search.WorkerPool.RunTasks's ticker), and returns results
// sorted by IPC descending -- the best-performing program first, the way
// pkg/result's table sorts by bytes saved -- with errored jobs (IPC 0)
// trailing at the end.
func (p *Pool) Run(ctx context.Context, jobs []Job, verbose bool) []Outcome {
	total := int64(len(jobs))
	ch := make(chan Job, len(jobs))
	for _, j := range jobs {
		ch <- j
	}
	close(ch)

	tickerDone := make(chan struct{})
	start := time.Now()
	if verbose {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-tickerDone:
					return
				case <-ticker.C:
					d := p.done.Load()
					fmt.Printf("  [%s] %d/%d jobs complete\n", time.Since(start).Round(time.Second), d, total)
				}
			}
		}()
	}

	var wg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				select {
				case <-ctx.Done():
					p.record(Outcome{Name: j.Name, Err: ctx.Err()})
					p.done.Add(1)
					continue
				default:
				}
				p.record(runJob(j))
				p.done.Add(1)
			}
		}()
	}
	wg.Wait()
	close(tickerDone)

	p.mu.Lock()
	out := append([]Outcome(nil), p.outcomes...)
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Err != nil || out[j].Err != nil {
			return out[i].Err == nil && out[j].Err != nil
		}
		return out[i].IPC > out[j].IPC
	})
	return out
}

func (p *Pool) record(o Outcome) {
	p.mu.Lock()
	p.outcomes = append(p.outcomes, o)
	p.mu.Unlock()
}

func runJob(j Job) Outcome {
	cpu, err := core.New(j.Config, nil)
	if err != nil {
		return Outcome{Name: j.Name, Err: fmt.Errorf("job %s: %w", j.Name, err)}
	}
	cpu.Init(j.Program)
	if err := cpu.Run(j.MaxCycles); err != nil {
		return Outcome{Name: j.Name, Cycles: cpu.Cycle(), Err: fmt.Errorf("job %s: %w", j.Name, err)}
	}
	retired := cpu.Retired()
	cycles := cpu.Cycle()
	var ipc float64
	if cycles > 0 {
		ipc = float64(retired) / float64(cycles)
	}
	return Outcome{
		Name:    j.Name,
		Cycles:  cycles,
		Prints:  cpu.PrintEvents(),
		Retired: int(retired),
		IPC:     ipc,
	}
}

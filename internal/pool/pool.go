// Package pool implements the bounded worker pool that drives Flaca's
// per-file recompression jobs across many goroutines, plus the two-stage
// interrupt gate spec.md §4.13/§5 describes. It is the Go-native reading of
// the original's crossbeam_channel + thread::scope shape (jobs.rs' exec/
// exec_pretty): a bounded channel of jobs, N worker goroutines, one
// reserved lane for GIF (gifsicle's own process is not safely reentrant
// across goroutines), and a process-wide atomic interrupt counter polled at
// job and phase boundaries rather than a signal handler that runs
// application logic.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/flaca-project/flaca/internal/compare"
)

// Job is one file queued for recompression: its path and the format
// dispatch hint (usually from the file extension) that decides which lane
// it travels through. The handler is still expected to verify the format
// against the file's magic bytes — this hint only decides routing, not
// trust.
type Job struct {
	Path   string
	Format compare.Format
}

// Interrupt is a process-wide, two-stage cancellation counter. A signal
// handler (or any other caller) should do nothing but call Signal(); all
// cancellation policy lives here and in the workers that poll it.
type Interrupt struct {
	n int32
}

// Signal registers one terminal interrupt. The first call requests a
// graceful drain (finish in-flight jobs, stop pulling new ones); a second
// call requests the next job to abort as soon as it next checks.
func (i *Interrupt) Signal() {
	atomic.AddInt32(&i.n, 1)
}

// Level returns how many interrupts have been observed so far.
func (i *Interrupt) Level() int {
	if i == nil {
		return 0
	}
	return int(atomic.LoadInt32(&i.n))
}

// ShouldDrain reports whether the pool should stop pulling new jobs from
// the queue (Level >= 1).
func (i *Interrupt) ShouldDrain() bool { return i.Level() >= 1 }

// ShouldAbort reports whether an in-flight job should abandon its current
// file at the next phase boundary rather than finish it (Level >= 2).
func (i *Interrupt) ShouldAbort() bool { return i.Level() >= 2 }

// NumWorkers resolves the -j flag's contract: a positive value is used
// as-is; zero or a negative value is interpreted relative to the number of
// logical CPUs (configured == -1 means "all but one"), clamped to at least
// one worker.
func NumWorkers(configured, numCPU int) int {
	if numCPU <= 0 {
		numCPU = runtime.NumCPU()
	}
	var n int
	switch {
	case configured > 0:
		n = configured
	case configured == 0:
		n = numCPU
	default:
		n = numCPU + configured
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run dispatches jobs across workers goroutines (plus, if any job's Format
// is compare.GIF, one additional goroutine reserved solely for those jobs,
// per spec.md §4.13's "one reserved worker for GIF"). handler is called
// once per job from whichever lane it was routed to; it owns all decisions
// about what "processing" a job means, including checking interrupt at its
// own phase boundaries per spec.md §5.
//
// Run returns once every job that was going to run has finished. It never
// returns an error itself — Interrupt.Level() after Run tells the caller
// whether the run was cut short.
func Run(jobs []Job, workers int, interrupt *Interrupt, handler func(Job)) {
	if workers < 1 {
		workers = 1
	}
	if interrupt == nil {
		interrupt = &Interrupt{}
	}

	var main, gif []Job
	for _, j := range jobs {
		if j.Format == compare.GIF {
			gif = append(gif, j)
		} else {
			main = append(main, j)
		}
	}

	var wg sync.WaitGroup

	if len(gif) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runLane(gif, interrupt, handler)
		}()
	}

	mainWorkers := workers
	if mainWorkers < 1 {
		mainWorkers = 1
	}
	if len(main) > 0 {
		queue := make(chan Job, mainWorkers)
		for w := 0; w < mainWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range queue {
					if interrupt.ShouldDrain() {
						continue
					}
					handler(j)
				}
			}()
		}
		for _, j := range main {
			if interrupt.ShouldDrain() {
				break
			}
			queue <- j
		}
		close(queue)
	}

	wg.Wait()
}

// runLane feeds jobs to handler one at a time on the calling goroutine,
// draining (not executing) the rest once interrupt requests it. It is used
// for the single-slot GIF lane, where "one goroutine, one job at a time" is
// the entire point.
func runLane(jobs []Job, interrupt *Interrupt, handler func(Job)) {
	for _, j := range jobs {
		if interrupt.ShouldDrain() {
			return
		}
		handler(j)
	}
}

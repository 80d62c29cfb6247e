// Package job implements the per-file state machine spec.md §4.15
// describes (Queued -> Reading -> {Decoding|Skipped} -> Compressing ->
// Comparing -> {Writing|NoImprovement} -> Done) and the run-wide Stats
// aggregator jobs.rs' SKIPPED/BEFORE/AFTER atomics are grounded on.
package job

import (
	"errors"
	"os"
	"sync/atomic"

	"github.com/flaca-project/flaca/internal/atomicfile"
	"github.com/flaca-project/flaca/internal/compare"
	"github.com/flaca-project/flaca/internal/diag"
	"github.com/flaca-project/flaca/internal/ferr"
)

// State names one step of a single file's journey through the pipeline.
type State int

const (
	Queued State = iota
	Reading
	Decoding
	Skipped
	Compressing
	Comparing
	Writing
	NoImprovement
	Done
)

// Options bundles everything Run needs to process one file: the candidate
// comparator's own options, the atomic-replace policy, and the traversal
// policy flags (--no-symlinks) that gate a file before it ever reaches the
// comparator.
type Options struct {
	Compare       compare.Options
	PreserveTimes bool
	NoSymlinks    bool
}

// Stats accumulates run-wide totals with atomic increments so many worker
// goroutines can update it concurrently without a mutex; totals are only
// meaningfully read after the pool has joined.
type Stats struct {
	optimized, unchanged, skipped, errored uint64
	bytesBefore, bytesAfter                uint64
}

func (s *Stats) addOptimized(before, after int) {
	atomic.AddUint64(&s.optimized, 1)
	atomic.AddUint64(&s.bytesBefore, uint64(before))
	atomic.AddUint64(&s.bytesAfter, uint64(after))
}
func (s *Stats) addUnchanged() { atomic.AddUint64(&s.unchanged, 1) }
func (s *Stats) addSkipped()   { atomic.AddUint64(&s.skipped, 1) }
func (s *Stats) addErrored()   { atomic.AddUint64(&s.errored, 1) }

// Totals is a point-in-time, non-atomic snapshot of Stats, safe to read
// freely once the run that populated it has finished.
type Totals struct {
	Optimized, Unchanged, Skipped, Errored uint64
	BytesBefore, BytesAfter                uint64
}

func (s *Stats) Snapshot() Totals {
	return Totals{
		Optimized:   atomic.LoadUint64(&s.optimized),
		Unchanged:   atomic.LoadUint64(&s.unchanged),
		Skipped:     atomic.LoadUint64(&s.skipped),
		Errored:     atomic.LoadUint64(&s.errored),
		BytesBefore: atomic.LoadUint64(&s.bytesBefore),
		BytesAfter:  atomic.LoadUint64(&s.bytesAfter),
	}
}

// BytesSaved returns BytesBefore-BytesAfter, the total size reduction
// across every optimized file in the run.
func (t Totals) BytesSaved() uint64 { return t.BytesBefore - t.BytesAfter }

// aborted is not used by Run: its phase checks report an interrupt
// directly as Skipped(Killed) through skip.
var aborted = errors.New("job: aborted by interrupt")

// Run drives one file through the state machine, recording its outcome
// into stats and returning a diag.Result describing what happened. abort,
// if non-nil, is polled at each phase boundary (decode/encode/compare/
// write per spec.md §5); when it reports true, Run stops at the next
// boundary and reports the file as Skipped(Killed) without having written
// anything.
func Run(path string, opts Options, stats *Stats, abort func() bool) diag.Result {
	shouldAbort := func() bool { return abort != nil && abort() }

	if opts.NoSymlinks {
		if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			stats.addSkipped()
			return skip(path, ferr.Symlink)
		}
	}

	if shouldAbort() {
		stats.addErrored()
		return skip(path, ferr.Killed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		stats.addSkipped()
		return skip(path, ferr.ReadFail)
	}
	if len(data) == 0 {
		stats.addSkipped()
		return skip(path, ferr.EmptyFile)
	}

	if shouldAbort() {
		stats.addErrored()
		return skip(path, ferr.Killed)
	}

	candidate, ok, cerr := compare.Recompress(data, opts.Compare)
	if cerr != nil {
		var ferrErr *ferr.Error
		if errors.As(cerr, &ferrErr) {
			switch ferrErr.Code {
			case ferr.InvalidImageType, ferr.Disabled, ferr.Oversize, ferr.ParseFail:
				stats.addSkipped()
				return diag.Result{Path: path, Skipped: true, Reason: ferrErr.Code.String()}
			}
		}
		stats.addErrored()
		return diag.Result{Path: path, Err: cerr}
	}

	if shouldAbort() {
		stats.addErrored()
		return skip(path, ferr.Killed)
	}

	if !ok {
		stats.addUnchanged()
		return diag.Result{Path: path, OriginalSize: int64(len(data)), NewSize: int64(len(data))}
	}

	if err := atomicfile.Replace(path, candidate, opts.PreserveTimes); err != nil {
		stats.addErrored()
		return diag.Result{Path: path, Err: ferr.New(ferr.WriteFail, path, err)}
	}

	stats.addOptimized(len(data), len(candidate))
	return diag.Result{Path: path, OriginalSize: int64(len(data)), NewSize: int64(len(candidate))}
}

func skip(path string, code ferr.Code) diag.Result {
	return diag.Result{Path: path, Skipped: true, Reason: code.String()}
}

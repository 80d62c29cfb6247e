// Command flaca losslessly recompresses GIF, JPEG, and PNG images in place,
// replacing each file only if a smaller byte-identical-when-decoded result
// is found. See spec.md §6 for the flag surface this mirrors.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/flaca-project/flaca/internal/compare"
	"github.com/flaca-project/flaca/internal/job"
	"github.com/flaca-project/flaca/internal/pool"
	"github.com/flaca-project/flaca/internal/png"
	"github.com/flaca-project/flaca/internal/zopfli"
)

const usageStr = `Usage: flaca [OPTION]... PATH...
Losslessly recompress GIF, JPEG, and PNG images in place.

  -h, --help              show this help
  -V, --version           show version
  -p, --progress          print a one-line progress report per file
  -j N                     parallelism; negative is relative to NumCPU
  -l, --list FILE          read paths from FILE (one per line), or stdin if -
      --no-gif             skip GIF files
      --no-jpeg            skip JPEG files
      --no-png             skip PNG files
      --no-symlinks        skip symlinks
      --preserve-times     propagate atime/mtime to the rewritten file
      --max-resolution N   pixel-count cap (default 2^32-1)
  -z N                     override zopfli iteration count (1-500)
`

var version = "dev"

func usage(w io.Writer) { fmt.Fprint(w, usageStr) }

func main() {
	log.SetFlags(0)
	log.SetPrefix("flaca: ")

	var (
		help          = flag.Bool("help", false, "")
		ver           = flag.Bool("version", false, "")
		progress      = flag.Bool("progress", false, "")
		jobs          = flag.Int("j", 0, "")
		list          = flag.String("list", "", "")
		noGIF         = flag.Bool("no-gif", false, "")
		noJPEG        = flag.Bool("no-jpeg", false, "")
		noPNG         = flag.Bool("no-png", false, "")
		noSymlinks    = flag.Bool("no-symlinks", false, "")
		preserveTimes = flag.Bool("preserve-times", false, "")
		maxResolution = flag.Uint64("max-resolution", 0, "")
		zIterations   = flag.Int("z", 0, "")
	)
	flag.BoolVar(help, "h", false, "")
	flag.BoolVar(ver, "V", false, "")
	flag.BoolVar(progress, "p", false, "")
	flag.StringVar(list, "l", "", "")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	if *ver {
		fmt.Println("flaca", version)
		os.Exit(0)
	}

	paths := flag.Args()
	if *list != "" {
		fromList, err := readList(*list)
		if err != nil {
			log.Fatalf("reading -l/--list: %v", err)
		}
		paths = append(paths, fromList...)
	}
	if len(paths) == 0 {
		usage(os.Stderr)
		os.Exit(1)
	}

	files, err := walk(paths, *noSymlinks)
	if err != nil {
		log.Fatalf("walking paths: %v", err)
	}
	if len(files) == 0 {
		log.Println("no images found")
		os.Exit(0)
	}

	workers := pool.NumWorkers(*jobs, runtime.NumCPU())

	var zopts zopfli.Options
	if *zIterations > 0 {
		n := *zIterations
		if n > 500 {
			n = 500
		}
		zopts.NumIterations = n
	}

	opts := job.Options{
		Compare: compare.Options{
			PNG: png.Options{
				Zopfli:        zopts,
				MaxResolution: *maxResolution,
			},
			// jpegtran and gifsicle are resolved from PATH; spec.md §1
			// treats both as opaque byte-in/byte-out collaborators, so
			// flaca carries no bundled copies or config for locating them
			// elsewhere.
			JPEGPath:       lookPath("jpegtran"),
			GIFPath:        lookPath("gifsicle"),
			VerifyLossless: true,
			DisableGIF:     *noGIF,
			DisableJPEG:    *noJPEG,
			DisablePNG:     *noPNG,
		},
		PreserveTimes: *preserveTimes,
		NoSymlinks:    *noSymlinks,
	}

	var jobList []pool.Job
	for _, f := range files {
		jobList = append(jobList, pool.Job{Path: f, Format: extFormat(f)})
	}

	interrupt := &pool.Interrupt{}
	installSignalHandler(interrupt)

	stats := &job.Stats{}
	pool.Run(jobList, workers, interrupt, func(j pool.Job) {
		result := job.Run(j.Path, opts, stats, interrupt.ShouldAbort)
		if *progress {
			fmt.Fprintln(os.Stderr, result.Line())
		}
	})

	t := stats.Snapshot()
	log.Printf("optimized %d, unchanged %d, skipped %d, errored %d (%d bytes saved)",
		t.Optimized, t.Unchanged, t.Skipped, t.Errored, t.BytesSaved())

	if interrupt.Level() > 0 {
		os.Exit(0)
	}
}

// lookPath resolves name on PATH, returning "" (which disables the backend)
// rather than an error if it isn't found.
func lookPath(name string) string {
	p, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return p
}

// extFormat guesses a dispatch format from a file's extension, purely to
// pick which lane (and, for GIF, the reserved single-worker lane) a job is
// routed to; job.Run independently verifies the real format from the
// file's magic bytes before doing anything destructive.
func extFormat(path string) compare.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return compare.PNG
	case ".jpg", ".jpeg":
		return compare.JPEG
	case ".gif":
		return compare.GIF
	default:
		return compare.Unknown
	}
}

// walk expands paths (files or directories) into a flat list of regular
// files, honoring noSymlinks by omitting symlinked files and directories
// entirely rather than following them.
func walk(paths []string, noSymlinks bool) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil {
			log.Printf("skipping %s: %v", p, err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if noSymlinks {
				continue
			}
			if resolved, err := os.Stat(p); err == nil {
				info = resolved
			}
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				log.Printf("skipping %s: %v", path, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if noSymlinks {
				if fi, err := d.Info(); err == nil && fi.Mode()&os.ModeSymlink != 0 {
					return nil
				}
			}
			out = append(out, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readList reads one path per line from name, or from stdin if name is "-".
func readList(name string) ([]string, error) {
	var r io.Reader
	if name == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

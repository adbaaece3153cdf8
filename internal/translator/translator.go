// Package translator turns one cl.exe argument vector into work: one
// cache-backend request per source file, or a single real-compiler
// passthrough when there is nothing to cache.
package translator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/quicken-build/quickencl/internal/backend"
	"github.com/quicken-build/quickencl/internal/clargs"
)

// OpenBackendFunc starts a backend session for one invocation.
type OpenBackendFunc func(ctx context.Context) (backend.Compiler, error)

// DirectFunc runs the real compiler with the full argument vector and
// returns its exit code.
type DirectFunc func(ctx context.Context, argv []string) (int, error)

// Summary describes one cached dispatch.
type Summary struct {
	Files    int
	Hits     int
	Misses   int
	Failures int
	Elapsed  time.Duration
}

// Translator routes a wrapper invocation. Invocations without source
// files (version queries, link-only commands), with an embedded
// language override, or with an empty argument vector go straight to
// the real compiler; everything else is forwarded to the cache
// backend, one request per source file.
type Translator struct {
	OpenBackend OpenBackendFunc
	Direct      DirectFunc

	// Stdout and Stderr are the wrapper's own streams. Forwarded
	// results are emitted here in source order.
	Stdout io.Writer
	Stderr io.Writer

	// Limit bounds concurrent forwards. Zero or negative means no
	// bound beyond the backend itself.
	Limit int

	// Record, when set, receives a Summary after every cached
	// dispatch.
	Record func(Summary)
}

// Run translates argv and returns the wrapper's process exit code.
func (t *Translator) Run(ctx context.Context, argv []string) int {
	args := clargs.Classify(argv)

	if len(argv) == 0 || !args.HasSources() || args.LanguageOverride {
		log.Debug("passing through to the real compiler", "args", len(argv), "language_override", args.LanguageOverride)
		return t.runDirect(ctx, argv)
	}

	return t.runCached(ctx, argv, args)
}

func (t *Translator) runDirect(ctx context.Context, argv []string) int {
	code, err := t.Direct(ctx, argv)
	if err != nil {
		fmt.Fprintln(t.Stderr, err)
	}

	return code
}

type outcome struct {
	result *backend.Result
	err    error
}

func (t *Translator) runCached(ctx context.Context, argv []string, args clargs.Classified) int {
	start := time.Now()

	session, err := t.OpenBackend(ctx)
	if err != nil {
		fmt.Fprintln(t.Stderr, err)
		return 1
	}

	log.Debug("forwarding to cache backend", "files", len(args.Sources), "output_dir", args.OutputDir)

	// One slot per source file: results land at their source index so
	// emission order never depends on completion order.
	outcomes := make([]outcome, len(args.Sources))

	g, gctx := errgroup.WithContext(ctx)
	if t.Limit > 0 {
		g.SetLimit(t.Limit)
	}

	for i, src := range args.Sources {
		g.Go(func() error {
			res, err := session.Compile(gctx, &backend.Request{
				SourceFile: src.Path,
				Args:       argv,
				OutputDir:  args.OutputDir,
			})

			// A failed forward stays isolated to its own file and
			// never cancels the siblings.
			outcomes[i] = outcome{result: res, err: err}

			return nil
		})
	}

	_ = g.Wait()

	if err := session.Close(); err != nil {
		log.Debug("closing backend session", "err", err)
	}

	summary := Summary{Files: len(args.Sources)}
	code := 0

	for _, out := range outcomes {
		if out.err != nil {
			summary.Failures++
			fmt.Fprintln(t.Stderr, out.err)

			if code == 0 {
				code = 1
			}

			continue
		}

		writeBlock(t.Stdout, out.result.Stdout)
		writeBlock(t.Stderr, out.result.Stderr)

		switch out.result.Status {
		case backend.StatusHit:
			summary.Hits++
		case backend.StatusMiss:
			summary.Misses++
		}

		if out.result.ExitCode != 0 && code == 0 {
			code = out.result.ExitCode
		}
	}

	summary.Elapsed = time.Since(start)

	if t.Record != nil {
		t.Record(summary)
	}

	return code
}

// writeBlock emits one result stream, appending a newline to blocks
// that lack one so adjacent results never run together on a line.
func writeBlock(w io.Writer, block string) {
	if block == "" {
		return
	}

	_, _ = io.WriteString(w, block)

	if !strings.HasSuffix(block, "\n") {
		_, _ = io.WriteString(w, "\n")
	}
}

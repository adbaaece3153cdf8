// quickencl is a drop-in replacement for cl.exe. It classifies the
// argument vector, forwards each source file to a caching build
// backend, and falls back to the real compiler when an invocation
// cannot be cached.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/quicken-build/quickencl/internal/backend"
	"github.com/quicken-build/quickencl/internal/config"
	"github.com/quicken-build/quickencl/internal/logging"
	"github.com/quicken-build/quickencl/internal/stats"
	"github.com/quicken-build/quickencl/internal/toolchain"
	"github.com/quicken-build/quickencl/internal/translator"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	logging.Init("quickencl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "quickencl:", err)
		return 2
	}

	log.Debug("configuration loaded", "source", cfg.Source, "backend", cfg.Backend)

	t := &translator.Translator{
		OpenBackend: func(ctx context.Context) (backend.Compiler, error) {
			return backend.Start(ctx, cfg.Backend)
		},
		Direct: runReal(cfg),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Limit:  runtime.NumCPU(),
		Record: record,
	}

	return t.Run(ctx, argv)
}

// runReal builds the passthrough path: capture the MSVC environment
// via vcvarsall, then run the real cl.exe with the untouched argument
// vector.
func runReal(cfg *config.Config) translator.DirectFunc {
	return func(ctx context.Context, argv []string) (int, error) {
		env, err := toolchain.NewEnv(cfg.VCVarsAll, cfg.Arch).Capture(ctx)
		if err != nil {
			return 1, err
		}

		return toolchain.NewRunner(cfg.CompilerPath, env).Run(ctx, argv)
	}
}

// record appends one invocation summary to the local stats database.
// Bookkeeping never affects the build: every failure here is logged
// and dropped.
func record(s translator.Summary) {
	dir, err := stats.DefaultDir()
	if err != nil {
		log.Debug("skipping stats", "err", err)
		return
	}

	db, err := stats.Open(dir)
	if err != nil {
		log.Debug("skipping stats", "err", err)
		return
	}
	defer db.Close()

	rec := &stats.Record{
		ID:        uuid.NewString(),
		Files:     s.Files,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Failures:  s.Failures,
		ElapsedMS: s.Elapsed.Milliseconds(),
	}

	if err := db.Append(rec); err != nil {
		log.Debug("failed to record stats", "err", err)
	}
}

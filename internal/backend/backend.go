// Package backend speaks to the external caching backend. The backend
// is a subprocess started once per wrapper invocation; requests and
// responses are JSON messages over its stdin/stdout, and its stderr is
// connected straight to the wrapper's stderr.
//
// On startup the backend immediately sends a Response carrying the
// protocol version it speaks. After that the wrapper sends a stream of
// Requests and the backend answers each with a Response, in any order;
// responses are correlated by ID.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// ProtocolVersion is the wire protocol this client speaks.
const ProtocolVersion = 1

// Status reports whether the backend served a compilation from cache.
type Status string

const (
	// StatusHit means a previously computed object was reused.
	StatusHit Status = "hit"

	// StatusMiss means the backend ran the real compiler.
	StatusMiss Status = "miss"
)

// Request asks the backend to produce the object for one source file.
// Args always carries the entire original argument vector, not just
// the flags, so the backend's fingerprint covers everything the real
// compiler would see.
type Request struct {
	ID         int64    `json:"id"`
	SourceFile string   `json:"source_file"`
	Args       []string `json:"args"`
	OutputDir  string   `json:"output_dir,omitempty"`
}

// Response is one message from the backend: the hello message on
// startup (Protocol set, ID 0) or the answer to a Request.
type Response struct {
	ID       int64  `json:"id"`
	Protocol int    `json:"protocol,omitempty"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Status   Status `json:"status,omitempty"`
	Err      string `json:"err,omitempty"`
}

// Result is the outcome of one forwarded compilation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Status   Status
}

// Success reports whether the compilation exited cleanly.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Compiler is the per-source-file contract the dispatcher consumes.
type Compiler interface {
	// Compile forwards one request and returns its result. A non-zero
	// ExitCode in the result is a compiler failure, not an error;
	// errors mean the backend never produced a usable result.
	Compile(ctx context.Context, req *Request) (*Result, error)

	// Close shuts the backend down and releases its process.
	Close() error
}

// ErrForwarding marks failures to obtain any result from the backend,
// as opposed to a compilation that ran and failed.
var ErrForwarding = errors.New("cache backend forwarding failed")

// ForwardingError wraps a transport or backend failure for one source
// file. errors.Is(err, ErrForwarding) matches it; Unwrap exposes the
// cause.
type ForwardingError struct {
	SourceFile string
	Err        error
}

func (e *ForwardingError) Error() string {
	return fmt.Sprintf("failed to forward %s to the cache backend: %v", e.SourceFile, e.Err)
}

func (e *ForwardingError) Unwrap() error {
	return e.Err
}

func (e *ForwardingError) Is(target error) bool {
	return target == ErrForwarding
}

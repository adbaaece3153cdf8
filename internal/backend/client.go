package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Client drives one backend subprocess. Requests may be answered out
// of order; the client correlates responses by ID, so any number of
// Compile calls can be in flight at once.
type Client struct {
	w    io.WriteCloser
	wmu  sync.Mutex
	enc  *json.Encoder
	wait func() error

	mu       sync.Mutex
	nextID   int64
	inflight map[int64]chan *Response
	readErr  error

	readDone  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewClient wraps an established request/response stream and performs
// the hello handshake: the backend's first message must announce the
// protocol version this client speaks.
func NewClient(w io.WriteCloser, r io.Reader) (*Client, error) {
	c := &Client{
		w:        w,
		enc:      json.NewEncoder(w),
		inflight: make(map[int64]chan *Response),
		readDone: make(chan struct{}),
	}

	dec := json.NewDecoder(bufio.NewReader(r))

	var hello Response
	if err := dec.Decode(&hello); err != nil {
		return nil, fmt.Errorf("failed to read backend hello: %w", err)
	}

	if hello.Protocol != ProtocolVersion {
		return nil, fmt.Errorf("backend speaks protocol %d, want %d", hello.Protocol, ProtocolVersion)
	}

	go c.readLoop(dec)

	return c, nil
}

// Start launches the backend program and performs the hello handshake.
// prog is the executable with optional space-separated flags; a bare
// name resolves via PATH. The backend's stderr goes straight to the
// wrapper's stderr.
func Start(ctx context.Context, prog string) (*Client, error) {
	fields := strings.Fields(prog)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no cache backend configured")
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open backend stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open backend stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start cache backend %s: %w", fields[0], err)
	}

	client, err := NewClient(stdin, stdout)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return nil, fmt.Errorf("cache backend %s: %w", fields[0], err)
	}

	client.wait = cmd.Wait

	return client, nil
}

// Compile forwards one request and blocks until its response arrives,
// the stream dies, or ctx is done. The client assigns the request ID.
func (c *Client) Compile(ctx context.Context, req *Request) (*Result, error) {
	ch := make(chan *Response, 1)

	c.mu.Lock()
	select {
	case <-c.readDone:
		c.mu.Unlock()
		return nil, &ForwardingError{SourceFile: req.SourceFile, Err: c.streamErr()}
	default:
	}

	c.nextID++
	req.ID = c.nextID
	c.inflight[req.ID] = ch
	c.mu.Unlock()

	if err := c.send(req); err != nil {
		c.forget(req.ID)
		return nil, &ForwardingError{SourceFile: req.SourceFile, Err: err}
	}

	select {
	case resp := <-ch:
		return c.result(req, resp)
	case <-c.readDone:
		// The response may have landed just before the stream closed.
		select {
		case resp := <-ch:
			return c.result(req, resp)
		default:
		}

		c.forget(req.ID)

		return nil, &ForwardingError{SourceFile: req.SourceFile, Err: c.streamErr()}
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, &ForwardingError{SourceFile: req.SourceFile, Err: ctx.Err()}
	}
}

// Close closes the request stream, waits for the reader to drain, and
// reaps the backend process. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		closeErr := c.w.Close()

		<-c.readDone

		if c.wait != nil {
			if err := c.wait(); err != nil {
				c.closeErr = fmt.Errorf("cache backend exited abnormally: %w", err)
				return
			}
		}

		c.closeErr = closeErr
	})

	return c.closeErr
}

func (c *Client) result(req *Request, resp *Response) (*Result, error) {
	if resp.Err != "" {
		return nil, &ForwardingError{SourceFile: req.SourceFile, Err: errors.New(resp.Err)}
	}

	return &Result{
		ExitCode: resp.ExitCode,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		Status:   resp.Status,
	}, nil
}

func (c *Client) send(req *Request) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.enc.Encode(req); err != nil {
		return fmt.Errorf("failed to send request %d: %w", req.ID, err)
	}

	return nil
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Client) streamErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.readErr != nil {
		return c.readErr
	}

	return errors.New("backend closed the response stream")
}

func (c *Client) readLoop(dec *json.Decoder) {
	defer close(c.readDone)

	for {
		var resp Response

		if err := dec.Decode(&resp); err != nil {
			c.mu.Lock()
			if !errors.Is(err, io.EOF) {
				c.readErr = fmt.Errorf("failed to decode backend response: %w", err)
			}
			c.mu.Unlock()

			return
		}

		c.mu.Lock()
		ch, ok := c.inflight[resp.ID]
		if ok {
			delete(c.inflight, resp.ID)
		}
		c.mu.Unlock()

		if !ok {
			log.Debug("discarding unmatched backend response", "id", resp.ID)
			continue
		}

		ch <- &resp
	}
}

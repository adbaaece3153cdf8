package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeBackend serves the wire protocol on in-memory pipes: it
// sends the hello message, hands the request/response streams to
// serve, and closes the response stream when serve returns.
func startFakeBackend(t *testing.T, serve func(dec *json.Decoder, enc *json.Encoder)) *Client {
	t.Helper()

	clientRead, serverWrite := io.Pipe()
	serverRead, clientWrite := io.Pipe()

	go func() {
		enc := json.NewEncoder(serverWrite)
		_ = enc.Encode(&Response{ID: 0, Protocol: ProtocolVersion})

		serve(json.NewDecoder(serverRead), enc)

		_ = serverWrite.Close()
	}()

	client, err := NewClient(clientWrite, clientRead)
	require.NoError(t, err)

	return client
}

// echoUntilEOF answers every request in arrival order.
func echoUntilEOF(dec *json.Decoder, enc *json.Encoder) {
	for {
		var req Request
		if dec.Decode(&req) != nil {
			return
		}

		_ = enc.Encode(&Response{
			ID:     req.ID,
			Stdout: "compiled " + req.SourceFile,
			Status: StatusHit,
		})
	}
}

func TestNewClientRejectsWrongProtocol(t *testing.T) {
	clientRead, serverWrite := io.Pipe()
	_, clientWrite := io.Pipe()

	go func() {
		_ = json.NewEncoder(serverWrite).Encode(&Response{ID: 0, Protocol: 99})
	}()

	_, err := NewClient(clientWrite, clientRead)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol 99")
}

func TestNewClientHelloReadFailure(t *testing.T) {
	_, clientWrite := io.Pipe()

	_, err := NewClient(clientWrite, strings.NewReader("not json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hello")
}

func TestClientCompile(t *testing.T) {
	received := make(chan *Request, 1)

	client := startFakeBackend(t, func(dec *json.Decoder, enc *json.Encoder) {
		var req Request
		if dec.Decode(&req) != nil {
			return
		}
		received <- &req

		_ = enc.Encode(&Response{ID: req.ID, ExitCode: 0, Stdout: "ok", Status: StatusMiss})
	})

	res, err := client.Compile(context.Background(), &Request{
		SourceFile: "main.cpp",
		Args:       []string{"/c", "/Foobj/", "main.cpp"},
		OutputDir:  "obj/",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "ok", res.Stdout)
	assert.Equal(t, StatusMiss, res.Status)
	assert.True(t, res.Success())

	req := <-received
	assert.Equal(t, int64(1), req.ID)
	assert.Equal(t, "main.cpp", req.SourceFile)
	assert.Equal(t, []string{"/c", "/Foobj/", "main.cpp"}, req.Args)
	assert.Equal(t, "obj/", req.OutputDir)

	require.NoError(t, client.Close())
}

func TestClientCompileFailureIsNotAnError(t *testing.T) {
	client := startFakeBackend(t, func(dec *json.Decoder, enc *json.Encoder) {
		var req Request
		if dec.Decode(&req) != nil {
			return
		}

		_ = enc.Encode(&Response{ID: req.ID, ExitCode: 2, Stderr: "main.cpp(3): error C2143"})
	})

	res, err := client.Compile(context.Background(), &Request{SourceFile: "main.cpp"})

	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "main.cpp(3): error C2143", res.Stderr)
	assert.False(t, res.Success())

	require.NoError(t, client.Close())
}

func TestClientCorrelatesOutOfOrderResponses(t *testing.T) {
	client := startFakeBackend(t, func(dec *json.Decoder, enc *json.Encoder) {
		var first, second Request
		if dec.Decode(&first) != nil || dec.Decode(&second) != nil {
			return
		}

		// Answer in reverse arrival order.
		_ = enc.Encode(&Response{ID: second.ID, Stdout: "compiled " + second.SourceFile})
		_ = enc.Encode(&Response{ID: first.ID, Stdout: "compiled " + first.SourceFile})
	})

	sources := []string{"a.cpp", "b.cpp"}
	results := make([]*Result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := client.Compile(context.Background(), &Request{SourceFile: src})
			if err == nil {
				results[i] = res
			}
		}()
	}
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, "compiled a.cpp", results[0].Stdout)
	assert.Equal(t, "compiled b.cpp", results[1].Stdout)

	require.NoError(t, client.Close())
}

func TestClientBackendReportedError(t *testing.T) {
	client := startFakeBackend(t, func(dec *json.Decoder, enc *json.Encoder) {
		var req Request
		if dec.Decode(&req) != nil {
			return
		}

		_ = enc.Encode(&Response{ID: req.ID, Err: "object storage unavailable"})
	})

	_, err := client.Compile(context.Background(), &Request{SourceFile: "main.cpp"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForwarding)
	assert.Contains(t, err.Error(), "main.cpp")
	assert.Contains(t, err.Error(), "object storage unavailable")

	require.NoError(t, client.Close())
}

func TestClientStreamClosedBeforeResponse(t *testing.T) {
	hello := `{"id":0,"protocol":1}` + "\n"
	client, err := NewClient(nopWriteCloser{io.Discard}, strings.NewReader(hello))
	require.NoError(t, err)

	// The response stream is already exhausted; wait for the reader
	// to notice before forwarding.
	<-client.readDone

	_, err = client.Compile(context.Background(), &Request{SourceFile: "main.cpp"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForwarding)
	assert.Contains(t, err.Error(), "closed the response stream")
}

func TestClientCompileContextCanceled(t *testing.T) {
	got := make(chan struct{})
	release := make(chan struct{})

	client := startFakeBackend(t, func(dec *json.Decoder, enc *json.Encoder) {
		var req Request
		if dec.Decode(&req) != nil {
			return
		}

		close(got)
		<-release
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-got
		cancel()
	}()

	_, err := client.Compile(ctx, &Request{SourceFile: "slow.cpp"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForwarding)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, client.Close())
}

func TestClientCompileAfterClose(t *testing.T) {
	client := startFakeBackend(t, func(dec *json.Decoder, enc *json.Encoder) {
		for {
			var req Request
			if dec.Decode(&req) != nil {
				return
			}
		}
	})

	require.NoError(t, client.Close())

	_, err := client.Compile(context.Background(), &Request{SourceFile: "late.cpp"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForwarding)
}

func TestForwardingError(t *testing.T) {
	cause := errors.New("pipe broke")
	err := &ForwardingError{SourceFile: "a.cpp", Err: cause}

	assert.ErrorIs(t, err, ErrForwarding)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "a.cpp")
	assert.Contains(t, err.Error(), "pipe broke")
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

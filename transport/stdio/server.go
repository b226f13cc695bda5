package stdio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/slighter12/modelweb-mcp-go/logger"
	"github.com/slighter12/modelweb-mcp-go/mcp"
)

const maxLineBytes = 1 << 20

// StdioServer answers line-delimited requests, one response line each.
type StdioServer struct {
	handler mcp.Handler
	in      io.Reader
	out     io.Writer
	mu      sync.Mutex
}

// NewStdioServer creates a server on the process's stdin and stdout.
func NewStdioServer(handler mcp.Handler) *StdioServer {
	return NewStdioServerWithIO(handler, os.Stdin, os.Stdout)
}

// NewStdioServerWithIO creates a server on the given streams.
func NewStdioServerWithIO(handler mcp.Handler, in io.Reader, out io.Writer) *StdioServer {
	return &StdioServer{
		handler: handler,
		in:      in,
		out:     out,
	}
}

// Start serves until EOF or ctx ends. Blank lines are skipped; a line over
// maxLineBytes is discarded and answered with INVALID_REQUEST.
func (s *StdioServer) Start(ctx context.Context) error {
	reader := bufio.NewReaderSize(s.in, 64*1024)

	logger.Debug("Stdio server started and waiting for messages")

	for {
		raw, tooLong, readErr := readLine(reader)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			logger.Error("Error reading stdin", "error", readErr)
			return readErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var resp mcp.Response
		line := bytes.TrimSpace(raw)
		switch {
		case tooLong:
			logger.Warn("Stdio request line too long", "limit", maxLineBytes)
			resp = mcp.NewError(mcp.UnknownRequestID, mcp.CodeInvalidRequest,
				fmt.Sprintf("Request exceeds %d bytes", maxLineBytes))
		case len(line) == 0:
			if readErr != nil {
				logger.Debug("Stdio EOF received, terminating server")
				return nil
			}
			continue
		default:
			resp = s.handler.ServeMCP(ctx, line)
		}

		if err := s.write(resp); err != nil {
			logger.Error("Error encoding response", "error", err)
			return err
		}
		logger.Debug("Stdio response sent", "request_id", resp.RequestID, "status", resp.Status)

		if readErr != nil {
			logger.Debug("Stdio EOF received, terminating server")
			return nil
		}
	}
}

// readLine returns the next line without its size capped by the reader's
// buffer. Once a line passes maxLineBytes the remainder is drained and
// tooLong is set.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

func (s *StdioServer) write(resp mcp.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(resp.Marshal(), '\n')); err != nil {
		return err
	}
	return nil
}

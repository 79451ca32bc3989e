package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

type readResult struct {
	err   error
	value string
}

// LineReader reads lines from a terminal without blocking past context
// cancellation. Nothing is read ahead, so the terminal can be handed to
// another reader between calls.
type LineReader struct {
	reader   *bufio.Reader
	inflight chan readResult
	eof      bool
}

// NewLineReader creates a reader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next trimmed line. io.EOF means input ended. A read
// abandoned by cancellation is picked up by the next call.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	if r.eof {
		return "", io.EOF
	}

	if r.inflight == nil {
		ch := make(chan readResult, 1)
		go func() {
			value, err := r.reader.ReadString('\n')
			ch <- readResult{value: value, err: err}
		}()
		r.inflight = ch
	}

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-r.inflight:
		r.inflight = nil
		if res.err != nil {
			if !errors.Is(res.err, io.EOF) {
				return "", res.err
			}
			r.eof = true
			if res.value == "" {
				return "", io.EOF
			}
		}
		return strings.TrimSpace(res.value), nil
	}
}

package stream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const maxLineBytes = 1 << 20

// ReaderSource reads lines from an io.Reader. Blank lines are skipped, and
// so are lines longer than the line limit. A blocked read is not interrupted
// by ctx; cancellation is seen before the next read.
type ReaderSource struct {
	br      *bufio.Reader
	log     *slog.Logger
	skipped int
}

// NewReaderSource wraps r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return newReaderSource(r, maxLineBytes)
}

func newReaderSource(r io.Reader, limit int) *ReaderSource {
	return &ReaderSource{br: bufio.NewReaderSize(r, limit), log: slog.Default()}
}

// Skipped returns the number of overlong lines dropped so far.
func (s *ReaderSource) Skipped() int { return s.skipped }

// Next returns the next non-blank line.
func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, tooLong, err := s.readLine()
		if err != nil {
			return "", err
		}
		if tooLong {
			s.skipped++
			s.log.Warn("discarded report", "error", "line exceeds buffer", "prefix", truncate(line, 64))
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}
}

// readLine returns one line without its terminator. A line that does not fit
// the buffer is consumed to its end and reported with tooLong set.
func (s *ReaderSource) readLine() (line string, tooLong bool, err error) {
	b, isPrefix, err := s.br.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(b), false, nil
	}
	line = string(b)
	for isPrefix {
		_, isPrefix, err = s.br.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, err
		}
	}
	return line, true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

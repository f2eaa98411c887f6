package tcp_client

import (
	"bytes"

	"github.com/pkg/errors"
)

// MaxLineLength bounds a single buffered line. The longest valid message is
// well below it.
const MaxLineLength = 4096

var ErrLineTooLong = errors.New("line exceeds maximum length")

// lineFramer splits a byte stream on '\n'. A preceding '\r' stays part of the
// line. Bytes after the last '\n' are kept for the next Feed.
type lineFramer struct {
	buf []byte
	max int
}

func newLineFramer(max int) *lineFramer {
	return &lineFramer{max: max}
}

// Feed appends chunk and returns every line it completed.
func (f *lineFramer) Feed(chunk []byte) ([][]byte, error) {
	f.buf = append(f.buf, chunk...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := make([]byte, i)
		copy(line, f.buf[:i])
		lines = append(lines, line)
		f.buf = f.buf[i+1:]
	}

	if len(f.buf) > f.max {
		f.buf = nil
		return lines, ErrLineTooLong
	}

	return lines, nil
}

// Pending returns the number of buffered bytes of an incomplete line.
func (f *lineFramer) Pending() int {
	return len(f.buf)
}

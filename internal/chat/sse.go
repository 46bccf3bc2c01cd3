package chat

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// maxEventSize bounds a single SSE line and the joined data of one event.
const maxEventSize = 64 * 1024

// ErrEventTooLarge is returned when a line or event exceeds maxEventSize.
var ErrEventTooLarge = errors.New("sse event exceeds 64KiB")

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReaderSize(r, maxEventSize)}
}

// ReadEvent returns the next event's type and data. Multiple data lines are
// joined with "\n". It returns io.EOF once the stream is exhausted.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	size := 0

	for {
		line, err := s.reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", nil, ErrEventTooLarge
		}
		if err != nil {
			if err == io.EOF {
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			eventType = ""
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := bytes.TrimPrefix(line[len("data:"):], []byte(" "))
			size += len(data) + 1
			if size > maxEventSize {
				return "", nil, ErrEventTooLarge
			}
			// ReadSlice reuses its buffer on the next call
			dataLines = append(dataLines, bytes.Clone(data))
		}
		// id:, retry: and ":" comments are ignored
	}
}

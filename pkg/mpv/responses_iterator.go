package mpv

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net"
)

const (
	readerSize = 4096
)

type responsesIterator struct {
	reader *bufio.Reader
}

// NewResponsesIterator creates an iterator which returns ResponsePayload processed from
// provided connection.
func NewResponsesIterator(conn net.Conn) *responsesIterator {
	return &responsesIterator{
		reader: bufio.NewReaderSize(conn, readerSize),
	}
}

// Next returns ResponsePayload fetched from a mpv socket connection.
// It blocks until newline-separated lines read from the connection form a valid JSON.
// Empty lines are skipped. Lines left in the buffer after a payload are served on the following
// calls without reading from the socket.
func (ri *responsesIterator) Next() (ResponsePayload, error) {
	var payload []byte

	for {
		line, err := ri.nextLine()
		if err != nil {
			return ResponsePayload{}, err
		}

		payload = append(payload, line...)
		if json.Valid(payload) {
			return getResponsePayload(payload)
		}
	}
}

func (ri *responsesIterator) nextLine() ([]byte, error) {
	for {
		line, err := ri.reader.ReadBytes(newline[0])
		if err != nil {
			return nil, err
		}

		line = bytes.TrimSuffix(line, newline)
		if len(line) > 0 {
			return line, nil
		}
	}
}

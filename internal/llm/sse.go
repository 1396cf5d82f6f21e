// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bufio"
	"bytes"
	"io"
)

// MaxEventSize is the maximum allowed size of a single SSE line (1MB).
// Grounded replies can carry large metadata blocks.
const MaxEventSize = 1024 * 1024

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReaderSize(r, 64*1024),
	}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type, data, and any error.
// Multiple data lines are joined with "\n". Returns io.EOF when the stream
// ends with no pending data.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for {
		line, err := s.readLine()
		if err != nil && len(line) == 0 {
			if err == io.EOF && len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			eventType = ""
			continue
		}

		// Comment
		if line[0] == ':' {
			continue
		}

		field, value, found := bytes.Cut(line, []byte(":"))
		if found {
			value = bytes.TrimPrefix(value, []byte(" "))
		}

		switch string(field) {
		case "data":
			dataLines = append(dataLines, append([]byte(nil), value...))
		case "event":
			eventType = string(value)
		}
		// id:, retry: and unknown fields are ignored

		if err == io.EOF {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, io.EOF
		}
	}
}

// readLine reads one line, failing once it grows past MaxEventSize.
func (s *SSEReader) readLine() ([]byte, error) {
	var line []byte
	for {
		frag, err := s.reader.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > MaxEventSize {
			return nil, ErrMalformedResponse
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return line, err
	}
}

package jsonrpc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoFrame indicates that no complete frame could be read: the stream
// ended, or a frame was truncated mid-header or mid-body. The caller should
// stop reading or wait for more output; there is nothing to skip.
var ErrNoFrame = errors.New("jsonrpc: no complete frame")

// ErrMalformed indicates a frame that was fully consumed but cannot be
// used: its body is not valid JSON, or its header block carried no usable
// Content-Length. The stream is positioned at the next frame, so the caller
// may log it and keep reading.
var ErrMalformed = errors.New("jsonrpc: malformed frame")

// EncodeFrame writes msg to w as a single length-prefixed frame.
func EncodeFrame(w io.Writer, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal frame body: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// DecodeFrame reads one frame from br and decodes its body.
//
// Errors split into exactly two classes. Truncation (clean EOF between
// frames, the stream ending mid-header or mid-body) reports ErrNoFrame,
// sometimes wrapped with detail; nothing more can be read. A frame that was
// consumed whole but is unusable — a body that fails JSON decoding, or a
// complete header block with a missing or non-numeric Content-Length (the
// body is then taken as empty) — reports ErrMalformed and leaves the stream
// at the next frame. Header names are matched case-insensitively and
// unknown headers are ignored.
func DecodeFrame(br *bufio.Reader) (*Message, error) {
	length := -1
	for i := 0; ; i++ {
		line, err := br.ReadString('\n')
		if err != nil {
			if i == 0 && line == "" && errors.Is(err, io.EOF) {
				// Clean end of stream between frames.
				return nil, ErrNoFrame
			}
			return nil, fmt.Errorf("stream ended mid-header: %w", ErrNoFrame)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, convErr := strconv.Atoi(strings.TrimSpace(value))
			if convErr != nil || n < 0 {
				// Unusable length; a later valid header may still fix it.
				length = -1
				continue
			}
			length = n
		}
	}
	if length < 0 {
		// The header block is consumed and declared no usable body, so the
		// stream is already at the next frame.
		return nil, fmt.Errorf("%w: header missing usable content-length", ErrMalformed)
	}

	body := make([]byte, length)
	if n, err := io.ReadFull(br, body); err != nil {
		return nil, fmt.Errorf("frame body: got %d of %d bytes: %w", n, length, ErrNoFrame)
	}

	msg := new(Message)
	if err := json.Unmarshal(body, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, nil
}

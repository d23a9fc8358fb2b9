package jsonrpc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		method string
		id     int64
		params any
	}{
		{name: "no params", method: "initialize", id: 1},
		{name: "empty arguments", method: "tools/call", id: 3, params: map[string]any{"name": "health_check", "arguments": map[string]any{}}},
		{name: "nested arguments", method: "tools/call", id: 4, params: map[string]any{
			"name": "query_memory",
			"arguments": map[string]any{
				"query": "implement async storage",
				"limit": 3,
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := NewRequest(tt.id, tt.method, tt.params)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}

			var buf bytes.Buffer
			if err := EncodeFrame(&buf, in); err != nil {
				t.Fatalf("EncodeFrame: %v", err)
			}

			out, err := DecodeFrame(bufio.NewReader(&buf))
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if out.JSONRPC != Version {
				t.Errorf("JSONRPC = %q, want %q", out.JSONRPC, Version)
			}
			if out.Method != tt.method {
				t.Errorf("Method = %q, want %q", out.Method, tt.method)
			}
			if out.IDKey() != in.IDKey() {
				t.Errorf("IDKey = %q, want %q", out.IDKey(), in.IDKey())
			}
			if !bytes.Equal(out.Params, in.Params) {
				t.Errorf("Params = %s, want %s", out.Params, in.Params)
			}
		})
	}
}

func TestDecodeFrameAbsent(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty stream", input: ""},
		{name: "eof mid header", input: "Content-Len"},
		{name: "eof before body", input: "Content-Length: 10\r\n\r\n"},
		{name: "declared 100 short body", input: "Content-Length: 100\r\n\r\n{\"jsonrpc\":\"2.0\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeFrame(bufio.NewReader(strings.NewReader(tt.input)))
			if msg != nil {
				t.Errorf("message = %+v, want nil", msg)
			}
			if !errors.Is(err, ErrNoFrame) {
				t.Errorf("error = %v, want ErrNoFrame", err)
			}
			if errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, must not be ErrMalformed", err)
			}
		})
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "body is not json", input: "Content-Length: 9\r\n\r\n{not json"},
		{name: "no content length header", input: "Content-Type: application/json\r\n\r\n"},
		{name: "non numeric length", input: "Content-Length: banana\r\n\r\n"},
		{name: "negative length", input: "Content-Length: -5\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeFrame(bufio.NewReader(strings.NewReader(tt.input)))
			if msg != nil {
				t.Errorf("message = %+v, want nil", msg)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
			if errors.Is(err, ErrNoFrame) {
				t.Errorf("error = %v, must not be ErrNoFrame", err)
			}
		})
	}
}

// A malformed frame consumes exactly its own bytes; the stream stays usable
// for the next frame.
func TestDecodeFrameMalformedThenRecovers(t *testing.T) {
	tests := []struct {
		name string
		bad  string
	}{
		{name: "after a bad body", bad: "Content-Length: 4\r\n\r\noops"},
		{name: "after an unusable length", bad: "Content-Length: banana\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.WriteString(tt.bad)

			good, err := NewRequest(2, "tools/list", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			if err := EncodeFrame(&buf, good); err != nil {
				t.Fatalf("EncodeFrame: %v", err)
			}

			br := bufio.NewReader(&buf)
			if _, err := DecodeFrame(br); !errors.Is(err, ErrMalformed) {
				t.Fatalf("first decode error = %v, want ErrMalformed", err)
			}
			msg, err := DecodeFrame(br)
			if err != nil {
				t.Fatalf("second decode error = %v, want nil", err)
			}
			if msg.Method != "tools/list" {
				t.Errorf("Method = %q, want tools/list", msg.Method)
			}
		})
	}
}

func TestDecodeFrameHeaderTolerance(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":7,"result":{}}`
	input := fmt.Sprintf("X-Junk-Line\r\ncontent-length: %d\r\nContent-Type: application/json\r\n\r\n%s", len(body), body)

	msg, err := DecodeFrame(bufio.NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if msg.IDKey() != "7" {
		t.Errorf("IDKey = %q, want 7", msg.IDKey())
	}
}

func TestDecodeFrameSequence(t *testing.T) {
	var buf bytes.Buffer
	for id := int64(1); id <= 3; id++ {
		msg, err := NewResult([]byte(fmt.Sprintf("%d", id)), map[string]string{"ok": "yes"})
		if err != nil {
			t.Fatalf("NewResult: %v", err)
		}
		if err := EncodeFrame(&buf, msg); err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
	}

	br := bufio.NewReader(&buf)
	for id := 1; id <= 3; id++ {
		msg, err := DecodeFrame(br)
		if err != nil {
			t.Fatalf("DecodeFrame #%d: %v", id, err)
		}
		if want := fmt.Sprintf("%d", id); msg.IDKey() != want {
			t.Errorf("IDKey = %q, want %q", msg.IDKey(), want)
		}
	}
	if _, err := DecodeFrame(br); !errors.Is(err, ErrNoFrame) {
		t.Errorf("trailing decode error = %v, want ErrNoFrame", err)
	}
}

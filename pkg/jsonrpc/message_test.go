package jsonrpc

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIDKey(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "integer", id: `3`, want: "3"},
		{name: "integer with spaces", id: ` 3 `, want: "3"},
		{name: "float that is integral", id: `3.0`, want: "3"},
		{name: "float", id: `3.5`, want: "3.5"},
		{name: "string", id: `"req-1"`, want: "req-1"},
		{name: "numeric string stays distinct-safe", id: `"3"`, want: "3"},
		{name: "null", id: `null`, want: ""},
		{name: "absent", id: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Message{ID: json.RawMessage(tt.id)}
			if got := m.IDKey(); got != tt.want {
				t.Errorf("IDKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewResultNullPayload(t *testing.T) {
	msg, err := NewResult(json.RawMessage(`5`), nil)
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// shutdown responses carry an explicit null result
	if !strings.Contains(string(raw), `"result":null`) {
		t.Errorf("encoded = %s, want explicit result:null", raw)
	}
}

func TestMessageKinds(t *testing.T) {
	req, err := NewRequest(1, "initialize", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.IsResponse() {
		t.Error("request classified as response")
	}

	res, err := NewResult(req.ID, map[string]any{"ok": true})
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	if !res.IsResponse() || res.IsError() {
		t.Errorf("result classified as IsResponse=%v IsError=%v", res.IsResponse(), res.IsError())
	}

	errRes := NewError(req.ID, -32601, "method not found")
	if !errRes.IsResponse() || !errRes.IsError() {
		t.Errorf("error classified as IsResponse=%v IsError=%v", errRes.IsResponse(), errRes.IsError())
	}
	if errRes.Error.Error() != "method not found" {
		t.Errorf("Error() = %q", errRes.Error.Error())
	}
}

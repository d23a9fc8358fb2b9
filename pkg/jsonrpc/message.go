package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Version is the protocol version tag carried by every envelope.
const Version = "2.0"

// Message is a JSON-RPC 2.0 envelope. A single struct covers requests,
// notifications and responses; which kind a given message is follows from
// the populated fields. ID and Params stay raw so that values round-trip
// byte-for-byte regardless of the peer's JSON style.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error member of a response envelope.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// NewRequest builds a request envelope with a numeric id. Params may be nil
// for parameterless methods; non-nil params are marshalled immediately so a
// bad argument fails at build time rather than at write time.
func NewRequest(id int64, method string, params any) (*Message, error) {
	msg := &Message{
		JSONRPC: Version,
		ID:      json.RawMessage(strconv.FormatInt(id, 10)),
		Method:  method,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params for %s: %w", method, err)
		}
		msg.Params = raw
	}
	return msg, nil
}

// NewResult builds a response envelope for the given raw id. A nil result
// is encoded as an explicit JSON null, which some methods (shutdown) use as
// their entire payload.
func NewResult(id json.RawMessage, result any) (*Message, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Message{JSONRPC: Version, ID: id, Result: raw}, nil
}

// NewError builds an error-response envelope for the given raw id.
func NewError(id json.RawMessage, code int, message string) *Message {
	return &Message{
		JSONRPC: Version,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}

// IsError reports whether the message carries an error member.
func (m *Message) IsError() bool {
	return m.Error != nil
}

// IsResponse reports whether the message is a response envelope, i.e. it
// carries a result or error rather than a method.
func (m *Message) IsResponse() bool {
	return m.Method == "" && (m.Result != nil || m.Error != nil)
}

// IDKey normalizes the raw id into a map key. String ids keep their value,
// numeric ids get a canonical decimal form (so 3, 3.0 and "3" from a peer
// that re-encodes numbers all land on the same key), and absent or null ids
// normalize to the empty string, which is never a valid key.
func (m *Message) IDKey() string {
	raw := bytes.TrimSpace(m.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return string(raw)
}

// Package jsonrpc implements the JSON-RPC 2.0 envelope and the
// length-prefixed stdio framing used by MCP servers.
//
// A frame on the wire is a small header block terminated by a blank line,
// followed by exactly Content-Length bytes of UTF-8 JSON:
//
//	Content-Length: 46\r\n
//	\r\n
//	{"jsonrpc":"2.0","id":1,"method":"initialize"}
//
// # Usage
//
// Encode requests with EncodeFrame and read replies with DecodeFrame:
//
//	msg, _ := jsonrpc.NewRequest(1, "initialize", nil)
//	if err := jsonrpc.EncodeFrame(stdin, msg); err != nil {
//	    return err
//	}
//
//	br := bufio.NewReader(stdout)
//	for {
//	    msg, err := jsonrpc.DecodeFrame(br)
//	    if errors.Is(err, jsonrpc.ErrNoFrame) {
//	        break
//	    }
//	    // Process msg...
//	}
//
// # Decode outcomes
//
// DecodeFrame distinguishes two failure classes and callers must too:
// ErrNoFrame means the stream ended or a frame was cut off (stop, or wait
// for more output), while ErrMalformed means a whole frame was consumed but
// is unusable, whether a non-JSON body or a header block with no usable
// length (skip it and keep reading). Collapsing the two turns a slow server
// into a protocol error.
package jsonrpc

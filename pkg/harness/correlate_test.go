package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/d-o-hub/mcp-smoke/pkg/jsonrpc"
)

func mkReceived(t *testing.T, id int64, payload any) received {
	t.Helper()
	msg, err := jsonrpc.NewResult(json.RawMessage(strconv.FormatInt(id, 10)), payload)
	require.NoError(t, err)
	return received{Msg: msg, At: time.Now()}
}

func TestCorrelateOrderIndependence(t *testing.T) {
	frames := make(chan received, frameBacklog)
	for _, id := range []int64{4, 2, 3, 1} {
		frames <- mkReceived(t, id, map[string]string{"ok": "yes"})
	}

	start := time.Now()
	got := correlate(context.Background(), frames, []string{"1", "2", "3", "4"}, 5*time.Second, zerolog.Nop())

	require.Len(t, got, 4)
	for _, key := range []string{"1", "2", "3", "4"} {
		require.Contains(t, got, key)
		require.Equal(t, key, got[key].Msg.IDKey())
	}
	// all four were already buffered, so the deadline never comes into play
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestCorrelatePartialOnDeadline(t *testing.T) {
	frames := make(chan received, frameBacklog)
	for _, id := range []int64{1, 2, 3} {
		frames <- mkReceived(t, id, "pong")
	}

	start := time.Now()
	got := correlate(context.Background(), frames, []string{"1", "2", "3", "4"}, 200*time.Millisecond, zerolog.Nop())
	elapsed := time.Since(start)

	require.Len(t, got, 3)
	require.NotContains(t, got, "4")
	require.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)
}

func TestCorrelateEarlyReturnOnMatch(t *testing.T) {
	frames := make(chan received, frameBacklog)
	frames <- mkReceived(t, 5, nil)

	start := time.Now()
	got := correlate(context.Background(), frames, []string{"5"}, 5*time.Second, zerolog.Nop())

	require.Len(t, got, 1)
	require.Less(t, time.Since(start), time.Second)
}

func TestCorrelateStreamCloseReturnsPartial(t *testing.T) {
	frames := make(chan received, frameBacklog)
	frames <- mkReceived(t, 1, "pong")
	close(frames)

	start := time.Now()
	got := correlate(context.Background(), frames, []string{"1", "2"}, 5*time.Second, zerolog.Nop())

	require.Len(t, got, 1)
	require.Contains(t, got, "1")
	require.Less(t, time.Since(start), time.Second)
}

func TestCorrelateDuplicateFirstWins(t *testing.T) {
	frames := make(chan received, frameBacklog)
	frames <- mkReceived(t, 1, "first")
	frames <- mkReceived(t, 1, "second")
	frames <- mkReceived(t, 2, "pong")

	got := correlate(context.Background(), frames, []string{"1", "2"}, 5*time.Second, zerolog.Nop())

	require.Len(t, got, 2)
	require.JSONEq(t, `"first"`, string(got["1"].Msg.Result))
}

func TestCorrelateIgnoresMessagesWithoutID(t *testing.T) {
	frames := make(chan received, frameBacklog)
	notification := &jsonrpc.Message{JSONRPC: jsonrpc.Version, Method: "log", Params: json.RawMessage(`{}`)}
	frames <- received{Msg: notification, At: time.Now()}
	frames <- mkReceived(t, 1, "pong")

	got := correlate(context.Background(), frames, []string{"1"}, 5*time.Second, zerolog.Nop())

	require.Len(t, got, 1)
	require.Contains(t, got, "1")
}

func TestCorrelateRecordsUnknownIDs(t *testing.T) {
	frames := make(chan received, frameBacklog)
	frames <- mkReceived(t, 99, "straggler")
	frames <- mkReceived(t, 1, "pong")

	start := time.Now()
	got := correlate(context.Background(), frames, []string{"1"}, 5*time.Second, zerolog.Nop())

	// the unknown id is kept for the record but never blocks completion
	require.Len(t, got, 2)
	require.Contains(t, got, "99")
	require.Less(t, time.Since(start), time.Second)
}

func TestCorrelateReturnsOnContextCancel(t *testing.T) {
	frames := make(chan received, frameBacklog)
	frames <- mkReceived(t, 1, "pong")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	got := correlate(ctx, frames, []string{"1", "2"}, 30*time.Second, zerolog.Nop())

	require.Len(t, got, 1)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestCorrelateEmptyWantReturnsImmediately(t *testing.T) {
	frames := make(chan received, frameBacklog)

	start := time.Now()
	got := correlate(context.Background(), frames, nil, 5*time.Second, zerolog.Nop())

	require.Empty(t, got)
	require.Less(t, time.Since(start), time.Second)
}

func TestStartReaderSkipsMalformedFrames(t *testing.T) {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "Content-Length: 8\r\n\r\nnot-json")
	msg, err := jsonrpc.NewResult(json.RawMessage(`1`), "after-garbage")
	require.NoError(t, err)
	require.NoError(t, jsonrpc.EncodeFrame(&buf, msg))

	frames := startReader(&buf, zerolog.Nop())

	rcv, ok := <-frames
	require.True(t, ok)
	require.Equal(t, "1", rcv.Msg.IDKey())

	_, ok = <-frames
	require.False(t, ok, "channel must close once the stream ends")
}

package harness

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/d-o-hub/mcp-smoke/pkg/jsonrpc"
)

// frameBacklog bounds the reader's channel. Four in-flight requests plus a
// shutdown can never legitimately produce more queued responses than this;
// the bound exists so a frame-spamming server applies backpressure to its
// own stdout instead of growing our heap.
const frameBacklog = 16

// received is one decoded message together with its arrival time.
type received struct {
	Msg *jsonrpc.Message
	At  time.Time
}

// startReader owns the child's stdout for the process lifetime. It decodes
// frames into a bounded channel and closes the channel when the stream
// ends, which tells the correlation passes that nothing further can
// arrive. Malformed frames are logged and skipped; the stream stays open.
func startReader(r io.Reader, logger zerolog.Logger) <-chan received {
	frames := make(chan received, frameBacklog)
	go func() {
		defer close(frames)
		br := bufio.NewReader(r)
		for {
			msg, err := jsonrpc.DecodeFrame(br)
			switch {
			case err == nil:
				frames <- received{Msg: msg, At: time.Now()}
			case errors.Is(err, jsonrpc.ErrMalformed):
				logger.Warn().Err(err).Msg("skipping malformed frame")
			case errors.Is(err, jsonrpc.ErrNoFrame):
				logger.Debug().Err(err).Msg("server stdout ended")
				return
			default:
				logger.Debug().Err(err).Msg("stdout reader stopped")
				return
			}
		}
	}()
	return frames
}

// correlate drains frames until every id in want has a response, the
// stream ends, the deadline passes, or ctx is canceled. It always returns
// whatever arrived; missing ids are simply absent from the table, never an
// error. Messages without a usable id are ignored. Responses for ids
// nobody asked about are recorded but do not affect termination. On a
// duplicate id the first response wins and later ones are dropped.
func correlate(ctx context.Context, frames <-chan received, want []string, deadline time.Duration, logger zerolog.Logger) map[string]received {
	pending := make(map[string]struct{}, len(want))
	for _, id := range want {
		pending[id] = struct{}{}
	}
	got := make(map[string]received, len(want))

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for len(pending) > 0 {
		select {
		case rcv, ok := <-frames:
			if !ok {
				logger.Warn().Int("missing", len(pending)).Msg("server stdout closed with responses outstanding")
				return got
			}
			key := rcv.Msg.IDKey()
			if key == "" {
				logger.Debug().Str("method", rcv.Msg.Method).Msg("ignoring message without id")
				continue
			}
			if _, dup := got[key]; dup {
				logger.Warn().Str("id", key).Msg("duplicate response id, keeping the first")
				continue
			}
			if _, wanted := pending[key]; !wanted {
				logger.Debug().Str("id", key).Msg("response for an id nobody is waiting on")
			}
			got[key] = rcv
			delete(pending, key)
		case <-timer.C:
			logger.Warn().
				Int("missing", len(pending)).
				Dur("deadline", deadline).
				Msg("deadline passed with responses outstanding")
			return got
		case <-ctx.Done():
			logger.Debug().Msg("run canceled during correlation")
			return got
		}
	}
	return got
}

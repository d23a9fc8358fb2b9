package harness

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// swallowWriter forwards writes to the sink and reports success regardless
// of the outcome. The relay below must keep draining the child's stderr
// even when the diagnostic sink breaks, otherwise the child can block on a
// full pipe.
type swallowWriter struct {
	w io.Writer
}

func (s swallowWriter) Write(p []byte) (int, error) {
	_, _ = s.w.Write(p)
	return len(p), nil
}

// relayStderr copies the child's stderr to sink verbatim until the stream
// closes. It runs for the whole process lifetime and is joined through wg
// during teardown, after the process has been reaped.
func relayStderr(wg *sync.WaitGroup, r io.Reader, sink io.Writer, logger zerolog.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		n, _ := io.Copy(swallowWriter{w: sink}, r)
		logger.Debug().Int64("bytes", n).Msg("stderr relay finished")
	}()
}

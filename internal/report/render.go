// Package report renders harness results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/d-o-hub/mcp-smoke/pkg/harness"
)

// Options control console rendering.
type Options struct {
	// MaxBody bounds each response body preview in bytes. Zero disables
	// previews entirely.
	MaxBody int
}

// Render writes a human-readable summary of rep to w: a result table, bounded
// response previews, and a process outcome line.
func Render(w io.Writer, rep *harness.Report, opts Options) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Smoke Results: %s (%s)", rep.Server, formatDuration(rep.Elapsed)))

	t.AppendHeader(table.Row{"#", "Method", "Tool", "ID", "Status", "Time"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Method", WidthMax: 30, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Time", Align: text.AlignRight},
	})

	for _, ex := range rep.Exchanges {
		t.AppendRow(table.Row{
			ex.Seq,
			ex.Method,
			ex.Tool,
			ex.ID,
			statusString(ex),
			formatExchangeTime(ex),
		})
	}

	t.AppendFooter(table.Row{
		"", "", "", "",
		verdictString(rep),
		formatDuration(rep.Elapsed),
	})
	t.Render()

	if opts.MaxBody > 0 {
		renderBodies(w, rep, opts.MaxBody)
	}

	fmt.Fprintf(w, "\nprocess: %s  command: %s\n", rep.ProcessOutcome, rep.Command)
}

// WriteJSON writes rep as one indented JSON object.
func WriteJSON(w io.Writer, rep *harness.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// statusString returns a colored string representing the exchange outcome.
func statusString(ex harness.Exchange) string {
	switch {
	case ex.Absent():
		return color.YellowString("? absent")
	case ex.Errored():
		return color.RedString("✗ error")
	default:
		return color.GreenString("✓ ok")
	}
}

func verdictString(rep *harness.Report) string {
	if n := rep.Failures(); n > 0 {
		return color.RedString("%d/%d failed", n, len(rep.Exchanges))
	}
	return color.GreenString("all ok")
}

func renderBodies(w io.Writer, rep *harness.Report, maxBody int) {
	for _, ex := range rep.Exchanges {
		if ex.Response == nil {
			continue
		}

		label := "result"
		raw := ex.Response.Result
		if ex.Response.IsError() {
			label = "error"
			raw, _ = json.Marshal(ex.Response.Error)
		}
		if len(raw) == 0 {
			continue
		}

		name := ex.Method
		if ex.Tool != "" {
			name = fmt.Sprintf("%s(%s)", ex.Method, ex.Tool)
		}
		fmt.Fprintf(w, "\n%s id=%s %s:\n%s\n", name, ex.ID, label, previewBody(raw, maxBody))
	}
}

// previewBody bounds body at max bytes, appending the count of bytes cut.
func previewBody(raw json.RawMessage, max int) string {
	s := strings.TrimSpace(string(raw))
	if max <= 0 || len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s… (+%d bytes)", s[:max], len(s)-max)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func formatExchangeTime(ex harness.Exchange) string {
	if ex.Absent() {
		return "-"
	}
	return ex.Duration.Round(10 * time.Microsecond).String()
}

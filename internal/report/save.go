package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/d-o-hub/mcp-smoke/pkg/harness"
)

// Save writes rep as indented JSON to path. The write is atomic: a temp
// file next to the destination is renamed into place, so CI steps polling
// the file never see a partial report.
func Save(path string, rep *harness.Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: creating %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encoding: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("report: replacing %s: %w", path, err)
	}
	return nil
}

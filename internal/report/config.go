package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/a11ycrawl/a11ycrawl/internal/config"
)

// WriteConfig dumps the effective config bundle to <dir>/config.yaml, the
// "config" member of REPORTS (spec.md §6) -- a record of exactly what
// configuration produced a given run's other reports.
func WriteConfig(dir string, cfg config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("report: marshaling config: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

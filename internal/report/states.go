package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
)

// stateFields is the extracted-fields sidecar spec.md §6 names alongside
// each state's raw page dump.
type stateFields struct {
	URL          string `json:"url"`
	Stub         bool   `json:"stub"`
	InitialFocus string `json:"initial_focus,omitempty"`
	TabOrderLen  int    `json:"tab_order_len"`
}

// StateFilesWriter emits the per-state raw/fields file pair spec.md §6
// describes ("State files"): "state-<id>.<ext>" and
// "state-fields-<id>.json". The optional template dump is not produced --
// htmltemplate.Template exposes no serialization of its merged tree to
// callers outside the package (see DESIGN.md).
type StateFilesWriter struct {
	Dir string
	Ext string // defaults to "html"
}

// Write dumps every state in g under w.Dir.
func (w StateFilesWriter) Write(g *graphstore.Graph) error {
	ext := w.Ext
	if ext == "" {
		ext = "html"
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("report: creating state dir %s: %w", w.Dir, err)
	}
	for _, s := range g.States() {
		rawPath := filepath.Join(w.Dir, fmt.Sprintf("state-%d.%s", s.ID, ext))
		if err := os.WriteFile(rawPath, []byte(s.Data.DOM), 0o644); err != nil {
			return fmt.Errorf("report: writing %s: %w", rawPath, err)
		}

		fields := stateFields{
			URL:          s.Data.URL,
			Stub:         s.Stub,
			InitialFocus: s.Data.InitialFocus,
			TabOrderLen:  len(s.Data.TabOrder),
		}
		fieldsJSON, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return fmt.Errorf("report: marshaling fields for state %d: %w", s.ID, err)
		}
		fieldsPath := filepath.Join(w.Dir, fmt.Sprintf("state-fields-%d.json", s.ID))
		if err := os.WriteFile(fieldsPath, fieldsJSON, 0o644); err != nil {
			return fmt.Errorf("report: writing %s: %w", fieldsPath, err)
		}
	}
	return nil
}

// ScreenshotWriter persists a state's screenshot bytes under
// "<dir>/screenshots/state-<id>.png", used only when config.Screenshots is
// set and the InterfaceAccess in use can capture one.
type ScreenshotWriter struct {
	Dir string
}

// Write saves png under w.Dir/screenshots/state-<id>.png.
func (w ScreenshotWriter) Write(stateID int, png []byte) error {
	dir := filepath.Join(w.Dir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: creating screenshot dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("state-%d.png", stateID))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

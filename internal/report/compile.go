package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// CrawlSummary is one crawl output directory reduced to the row shape
// util_scripts/compile_outputs.py aggregates: one line per entry point,
// comparable across many independent runs.
type CrawlSummary struct {
	EntryPoint      string
	NumStates       int
	UserEdges       map[string]int
	ViolationCounts map[string]int
}

type metricsRow struct {
	Users map[string]json.RawMessage `json:"users"`
}

type violationEntry struct {
	Violations []struct {
		Type     string `json:"type"`
		Category string `json:"category"`
	} `json:"violations"`
}

// Summarize re-reads one crawl output directory's own reports (graph.gml's
// JSON siblings: metrics.json, violations.json, state-fields-0.json) back
// into a CrawlSummary, the same reduction compile_outputs.py performs over
// a finished crawl's csv/json artifacts rather than over live graph state.
func Summarize(dir string) (CrawlSummary, error) {
	sum := CrawlSummary{
		UserEdges:       map[string]int{},
		ViolationCounts: map[string]int{},
	}

	if fields, err := os.ReadFile(filepath.Join(dir, "state-fields-0.json")); err == nil {
		var sf struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(fields, &sf); err == nil {
			sum.EntryPoint = sf.URL
		}
	}

	numStates := 0
	for {
		if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf("state-fields-%d.json", numStates))); err != nil {
			break
		}
		numStates++
	}
	sum.NumStates = numStates

	if raw, err := os.ReadFile(filepath.Join(dir, "metrics.json")); err == nil {
		var rows []metricsRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return sum, fmt.Errorf("report: parsing %s: %w", filepath.Join(dir, "metrics.json"), err)
		}
		for _, row := range rows {
			for user := range row.Users {
				sum.UserEdges[user]++
			}
		}
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "violations.json")); err == nil {
		var states map[string]violationEntry
		if err := json.Unmarshal(raw, &states); err != nil {
			return sum, fmt.Errorf("report: parsing %s: %w", filepath.Join(dir, "violations.json"), err)
		}
		for _, entry := range states {
			for _, v := range entry.Violations {
				if v.Type != "atomic" {
					continue
				}
				sum.ViolationCounts[v.Category]++
			}
		}
	}

	return sum, nil
}

// CompileCSV aggregates Summarize(dir) over every crawl directory into one
// CSV, the Go counterpart of util_scripts/compile_outputs.py's
// aggregated_metrics.csv. Columns are entry_point, num_states, one
// <user>_num_edges per user seen anywhere in dirs, then one violation
// category column per category seen anywhere in dirs -- both column sets
// are the union across all directories, not just the first one, since
// crawl configs (crawl_users, rule sets) can differ between runs.
func CompileCSV(w io.Writer, dirs []string) error {
	summaries := make([]CrawlSummary, 0, len(dirs))
	userSet := map[string]bool{}
	categorySet := map[string]bool{}
	for _, dir := range dirs {
		sum, err := Summarize(dir)
		if err != nil {
			return err
		}
		for user := range sum.UserEdges {
			userSet[user] = true
		}
		for cat := range sum.ViolationCounts {
			categorySet[cat] = true
		}
		summaries = append(summaries, sum)
	}

	users := sortedKeys(userSet)
	categories := sortedKeys(categorySet)

	header := []string{"entry_point", "num_states"}
	for _, u := range users {
		header = append(header, u+"_num_edges")
	}
	header = append(header, categories...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: writing compile header: %w", err)
	}
	for _, sum := range summaries {
		row := []string{sum.EntryPoint, fmt.Sprint(sum.NumStates)}
		for _, u := range users {
			row = append(row, fmt.Sprint(sum.UserEdges[u]))
		}
		for _, cat := range categories {
			row = append(row, fmt.Sprint(sum.ViolationCounts[cat]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: writing compile row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

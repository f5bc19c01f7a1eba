// Package crawlerr holds the sentinel errors for the taxonomy in spec.md
// §7, so callers can classify failures with errors.Is/errors.As instead of
// string matching.
package crawlerr

import "errors"

var (
	// ErrInterfaceTransient covers timeouts, stale elements, elements that
	// are not interactable, and unexpected alerts. Bounded retry with
	// state-replay; on exhaustion the action yields ability score 0.
	ErrInterfaceTransient = errors.New("interface: transient error")

	// ErrInterfaceFatal covers driver crashes and failure to load the
	// entry point. The caller tears down and recreates the access.
	ErrInterfaceFatal = errors.New("interface: fatal error")

	// ErrComparator is raised when a comparator itself fails; the caller
	// treats the pair as "different".
	ErrComparator = errors.New("comparator: evaluation failed")

	// ErrConfig is a configuration error; it must hard-fail before the
	// crawl starts.
	ErrConfig = errors.New("configuration error")

	// ErrAnalyzerDataGap covers missing style info or missing build data;
	// the analyzer logs a warning and skips the affected item.
	ErrAnalyzerDataGap = errors.New("analyzer: data gap")
)

package htmltemplate

import (
	"context"
	"time"
)

// Snapshotter returns the current raw DOM string. Implementations (e.g.
// internal/webaccess) poll the live page; tests can supply a canned
// sequence.
type Snapshotter func(ctx context.Context) (string, error)

// WaitResult is the outcome of WaitForStable.
type WaitResult struct {
	StableTime time.Duration
	Template   *Template
	Stable     bool
}

// WaitForStable repeatedly snapshots the DOM at interval I up to timeout T,
// folding successive snapshots into a running template (spec.md §4.2
// "Waiting for stability"). A snapshot is stable when it string-equals the
// prior snapshot for a continuous window of at least thresh seconds.
//
// On timeout without reaching thresh, it walks the accumulated per-snapshot
// templates backwards, merging any pair whose changing-element sets match
// (detecting animation cycles), and returns stable=false with the union
// template.
func WaitForStable(ctx context.Context, snap Snapshotter, interval, timeout, thresh time.Duration) (WaitResult, error) {
	deadline := time.Now().Add(timeout)
	var (
		tpl           *Template
		history       []*Template
		last          string
		stableSince   time.Time
		haveStableRun bool
	)

	for {
		raw, err := snap(ctx)
		if err != nil {
			return WaitResult{}, err
		}
		snapTpl, err := New(raw)
		if err != nil {
			return WaitResult{}, err
		}
		history = append(history, snapTpl)

		if tpl == nil {
			tpl = snapTpl
		} else {
			tpl.AddTemplate(snapTpl)
		}

		now := time.Now()
		if raw == last {
			if !haveStableRun {
				stableSince = now
				haveStableRun = true
			}
			if now.Sub(stableSince) >= thresh {
				return WaitResult{StableTime: now.Sub(stableSince), Template: tpl, Stable: true}, nil
			}
		} else {
			haveStableRun = false
		}
		last = raw

		if now.Add(interval).After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return WaitResult{}, ctx.Err()
		case <-time.After(interval):
		}
	}

	mergeAnimationCycles(history)
	final := history[0]
	for _, h := range history[1:] {
		final.AddTemplate(h)
	}
	return WaitResult{StableTime: 0, Template: final, Stable: false}, nil
}

// mergeAnimationCycles walks accumulated templates backwards; whenever the
// currently-changing xpath set of one matches a prior template's changing
// set, it merges them into the earlier one so the returned union carries
// the full instability set without double counting a repeating cycle.
func mergeAnimationCycles(history []*Template) {
	for i := len(history) - 1; i > 0; i-- {
		cur := xpathSet(history[i].UnstableXPaths())
		for j := i - 1; j >= 0; j-- {
			prior := xpathSet(history[j].UnstableXPaths())
			if setsEqual(cur, prior) {
				history[j].AddTemplate(history[i])
				break
			}
		}
	}
}

func xpathSet(paths []string) map[string]bool {
	m := make(map[string]bool, len(paths))
	for _, p := range paths {
		m[p] = true
	}
	return m
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

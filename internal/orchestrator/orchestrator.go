// Package orchestrator sequences one crawl run end to end (C11): for each
// entry point, build the graph with the build user, emit reports, then for
// every crawl user run the simulated re-crawl and re-emit reports. Reports
// themselves are written by internal/report; the orchestrator only calls
// into it in order, matching the teacher's cmd_campaign.go shape of
// sequencing a long-running job's phases without owning their internals.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/a11ycrawl/a11ycrawl/internal/ability"
	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/action"
	"github.com/a11ycrawl/a11ycrawl/internal/analyzer"
	"github.com/a11ycrawl/a11ycrawl/internal/compare"
	"github.com/a11ycrawl/a11ycrawl/internal/config"
	"github.com/a11ycrawl/a11ycrawl/internal/crawlerr"
	"github.com/a11ycrawl/a11ycrawl/internal/explorer"
	"github.com/a11ycrawl/a11ycrawl/internal/graphstore"
	"github.com/a11ycrawl/a11ycrawl/internal/logging"
	"github.com/a11ycrawl/a11ycrawl/internal/report"
	"github.com/a11ycrawl/a11ycrawl/internal/simcrawl"
	"github.com/a11ycrawl/a11ycrawl/internal/webaccess"
	"github.com/a11ycrawl/a11ycrawl/internal/webaction"
)

// AccessFactory builds one InterfaceAccess. Exposed so tests can substitute
// a fake driver; the CLI wires webaccess.New.
type AccessFactory func(cfg config.Config, actions []access.Action) access.InterfaceAccess

// Orchestrator runs a crawl over one or more entry points under a fixed
// config.
type Orchestrator struct {
	cfg        config.Config
	log        *zap.Logger
	newAccess  AccessFactory
	formValues []string
}

// New builds an Orchestrator. formValues are the candidate values
// FormFillAction tries, in order (spec.md §8 scenario 4).
func New(cfg config.Config, formValues []string) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		log:        logging.Get(logging.CategoryOrchestrator),
		newAccess:  func(cfg config.Config, actions []access.Action) access.InterfaceAccess { return webaccess.New(cfg, actions) },
		formValues: formValues,
	}
}

// WithAccessFactory overrides the default go-rod access factory, used by
// tests.
func (o *Orchestrator) WithAccessFactory(f AccessFactory) *Orchestrator {
	o.newAccess = f
	return o
}

// Run processes every entry point in order: build, report, simulated
// re-crawl per crawl user, report again. An invalid config, an empty entry
// point list, or an unknown build user is returned at once, before any
// entry point runs. A failure on one entry point is logged and does not
// stop the others; the first such failure is returned after all have run.
func (o *Orchestrator) Run(ctx context.Context, entryPoints []string) error {
	if err := o.cfg.Validate(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if len(entryPoints) == 0 {
		return fmt.Errorf("%w: no entry points given", crawlerr.ErrConfig)
	}

	buildUser, err := userModel(o.cfg.BuildUser)
	if err != nil {
		return err
	}

	var firstErr error
	for _, ep := range entryPoints {
		if err := o.runOne(ctx, ep, buildUser); err != nil {
			o.log.Error("entry point failed", zap.String("entry_point", ep), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (o *Orchestrator) runOne(ctx context.Context, entryPoint string, buildUser *ability.UserModel) error {
	reg := action.NewRegistry()
	actions := defaultActions(reg, o.formValues)
	pipeline := compare.Default()

	g, err := o.build(ctx, entryPoint, buildUser, actions, pipeline)
	if err != nil {
		return fmt.Errorf("%w: building graph for %s: %v", crawlerr.ErrInterfaceFatal, entryPoint, err)
	}

	dir := outputDir(o.cfg.OutputDir, entryPoint)
	if err := o.emit(dir, g); err != nil {
		o.log.Warn("report emission failed", zap.Error(err))
	}

	for _, name := range o.cfg.CrawlUsers {
		user, err := userModel(name)
		if err != nil {
			o.log.Warn("skipping unknown crawl user", zap.String("user", name), zap.Error(err))
			continue
		}
		simcrawl.Walk(g, user, o.cfg.BuildUser)
	}

	if len(o.cfg.CrawlUsers) > 0 {
		if err := o.emit(dir, g); err != nil {
			o.log.Warn("post-simcrawl report emission failed", zap.Error(err))
		}
	}
	return nil
}

// build runs either the single-threaded or pooled explorer depending on
// cfg.Multi (spec.md §5 "two modes"). The pooled explorer already tears
// its own workers down once its queue drains, satisfying "stop the pool
// after all entry points" per call.
func (o *Orchestrator) build(ctx context.Context, entryPoint string, buildUser *ability.UserModel, actions []access.Action, pipeline *compare.Pipeline) (*graphstore.Graph, error) {
	opts := explorer.DefaultOptions()
	opts.Reduced = o.cfg.ReducedCrawl

	if o.cfg.Multi {
		factory := func() (access.InterfaceAccess, error) {
			return o.newAccess(o.cfg, actions), nil
		}
		return explorer.BuildPooled(ctx, o.cfg.NumThreads, factory, buildUser, actions, pipeline, entryPoint, opts)
	}

	ia := o.newAccess(o.cfg, actions)
	g, err := explorer.Build(ctx, ia, buildUser, actions, pipeline, entryPoint, opts)
	if shutErr := ia.Shutdown(context.Background()); shutErr != nil {
		o.log.Warn("access shutdown failed", zap.Error(shutErr))
	}
	return g, err
}

func userModel(name string) (*ability.UserModel, error) {
	switch name {
	case "build":
		return ability.New(name, ability.Build{}), nil
	case "low_vision":
		return ability.New(name, ability.LowVision{}), nil
	case "screen_reader":
		return ability.New(name, ability.ScreenReader{}), nil
	case "motor":
		return ability.New(name, ability.Motor{}), nil
	default:
		return nil, fmt.Errorf("%w: unknown user model %q", crawlerr.ErrConfig, name)
	}
}

func defaultActions(reg *action.Registry, formValues []string) []access.Action {
	if len(formValues) == 0 {
		formValues = []string{"test@example.com", "user@example.org"}
	}
	return []access.Action{
		webaction.Click(reg),
		webaction.KeyActivate(reg),
		webaction.Toggle(reg),
		webaction.FormFill(reg, formValues),
		webaction.Follow(reg),
	}
}

// outputDir computes a per-entry-point subdirectory of base so that
// running with multiple entry points doesn't clobber each other's reports.
func outputDir(base, entryPoint string) string {
	slug := entryPoint
	if u, err := url.Parse(entryPoint); err == nil && u.Host != "" {
		slug = u.Host + strings.ReplaceAll(u.Path, "/", "_")
	}
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, slug)
	if slug == "" {
		slug = "entry"
	}
	return base + "/" + slug
}

// emit writes every report kind cfg.Reports names to dir, running the
// analyzer first since both the GML layouts and the violation map depend
// on it.
func (o *Orchestrator) emit(dir string, g *graphstore.Graph) error {
	wants := func(k config.ReportKind) bool {
		for _, r := range o.cfg.Reports {
			if r == k || r == config.ReportAll {
				return true
			}
		}
		return false
	}

	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var rep analyzer.Report
	var layouts map[string]analyzer.Layout
	needsAnalysis := wants(config.ReportAnalysis) || wants(config.ReportGML)
	if needsAnalysis {
		rep = analyzer.AnalyzeWithConfig(g, o.cfg, o.cfg.BuildUser)
		if wants(config.ReportGML) {
			sg := analyzer.BuildSubgraph(g, o.cfg.BuildUser)
			layouts = analyzer.ComputeLayouts(sg)
		}
	}

	if wants(config.ReportGML) {
		note(writeFile(dir, "graph.gml", func(w io.Writer) error {
			return report.GMLWriter{}.Write(w, g, o.cfg.BuildUser, o.cfg.CrawlUsers, layouts)
		}))
	}
	if wants(config.ReportAnalysis) {
		note(writeFile(dir, "violations.json", func(w io.Writer) error {
			return report.ViolationMapWriter{ScreenshotDir: screenshotDirFor(o.cfg)}.Write(w, g, rep, o.cfg.BuildUser)
		}))
	}
	if wants(config.ReportMetrics) {
		users := append([]string{o.cfg.BuildUser}, o.cfg.CrawlUsers...)
		note(writeFile(dir, "metrics.json", func(w io.Writer) error {
			return report.MetricsWriter{}.Write(w, g, users)
		}))
	}
	if wants(config.ReportStates) {
		note(report.StateFilesWriter{Dir: dir}.Write(g))
	}
	if wants(config.ReportConfig) {
		note(report.WriteConfig(dir, o.cfg))
	}
	return firstErr
}

// writeFile creates dir if needed, opens dir/name, and hands the file to
// fn, closing it afterward regardless of fn's outcome.
func writeFile(dir, name string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("orchestrator: creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("orchestrator: creating %s: %w", path, err)
	}
	defer f.Close()
	return fn(f)
}

func screenshotDirFor(cfg config.Config) string {
	if !cfg.Screenshots {
		return ""
	}
	return "screenshots"
}

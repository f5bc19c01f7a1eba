// Package webaccess is the reference go-rod realization of the
// InterfaceAccess contract (C7): a single browser tab driven through one
// entry point, replayed deterministically back to any previously observed
// state by reloading and re-running the build user's path.
package webaccess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/ysmood/gson"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/builddata"
	"github.com/a11ycrawl/a11ycrawl/internal/config"
	"github.com/a11ycrawl/a11ycrawl/internal/crawlerr"
	"github.com/a11ycrawl/a11ycrawl/internal/htmltemplate"
	"github.com/a11ycrawl/a11ycrawl/internal/logging"
	"github.com/a11ycrawl/a11ycrawl/internal/metrics"

	"go.uber.org/zap"
)

const xpathScript = `() => {
	function xpathOf(el) {
		if (!el || el.nodeType !== 1) return "";
		if (el === document.body) return "/html/body";
		let ix = 0;
		const siblings = el.parentNode ? el.parentNode.childNodes : [];
		for (let i = 0; i < siblings.length; i++) {
			const sib = siblings[i];
			if (sib === el) return xpathOf(el.parentNode) + "/" + el.tagName.toLowerCase() + "[" + (ix + 1) + "]";
			if (sib.nodeType === 1 && sib.tagName === el.tagName) ix++;
		}
		return "";
	}
	return xpathOf(this);
}`

const styleScript = `() => {
	const s = window.getComputedStyle(this);
	const r = this.getBoundingClientRect();
	return {
		color: s.color,
		background: s.backgroundColor,
		outline: s.outline,
		border: s.border,
		fontSize: parseFloat(s.fontSize) || 0,
		x: r.x,
		y: r.y,
		width: r.width,
		height: r.height,
	};
}`

// interactiveSelector enumerates the element classes RodAccess considers
// for ElementsToExplore and tab-order generation.
const interactiveSelector = "a[href], button, input, select, textarea, [role=button], [role=link], [onclick], [tabindex]"

// keyboardKeys names the keys key_press accepts, covering Enter activation
// and the arrow keys a repeat/reverse pair may request.
var keyboardKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Escape":     input.Escape,
	"Tab":        input.Tab,
	"Space":      input.Space,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
}

// RodAccess drives a single rod.Page against one entry point.
type RodAccess struct {
	cfg config.Config
	log *zap.Logger

	sessionID  string
	browser    *rod.Browser
	page       *rod.Page
	entryPoint string
	replay     []access.ReplayStep

	actions []access.Action

	revisits map[string]int
}

// New constructs an un-started RodAccess. Load must be called before any
// other method. Each instance is tagged with a session id so log lines
// from concurrent pooled-explorer workers can be correlated back to the
// access instance that produced them.
func New(cfg config.Config, actions []access.Action) *RodAccess {
	sessionID := uuid.NewString()
	return &RodAccess{
		cfg:       cfg,
		log:       logging.Get(logging.CategoryAccess).With(zap.String("session_id", sessionID)),
		sessionID: sessionID,
		actions:   actions,
		revisits:  make(map[string]int),
	}
}

// Load launches (or reuses) a browser, navigates to entryPoint, and waits
// for the DOM to stabilize before returning (spec.md §4.2).
func (r *RodAccess) Load(ctx context.Context, entryPoint string) (bool, error) {
	if r.browser == nil {
		l := launcher.New().Headless(r.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return false, fmt.Errorf("%w: launch chrome: %v", crawlerr.ErrInterfaceFatal, err)
		}
		browser := rod.New().ControlURL(u).Context(ctx)
		if err := browser.Connect(); err != nil {
			return false, fmt.Errorf("%w: connect chrome: %v", crawlerr.ErrInterfaceFatal, err)
		}
		r.browser = browser
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: entryPoint})
	if err != nil {
		return false, fmt.Errorf("%w: open page: %v", crawlerr.ErrInterfaceFatal, err)
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.WindowWidth,
		Height:            r.cfg.WindowHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}).Call(page); err != nil {
		r.log.Warn("set viewport failed", zap.Error(err))
	}

	r.page = page
	r.entryPoint = entryPoint
	r.replay = nil
	r.revisits = make(map[string]int)

	res, err := r.waitStable(ctx)
	if err != nil {
		return false, err
	}
	return res.Stable, nil
}

// pollInterval is the fixed pacing between stability snapshots; only the
// threshold and timeout are configurable (spec.md §6).
const pollInterval = 250 * time.Millisecond

func (r *RodAccess) waitStable(ctx context.Context) (htmltemplate.WaitResult, error) {
	snap := func(ctx context.Context) (string, error) {
		return r.page.HTML()
	}
	return htmltemplate.WaitForStable(ctx, snap, pollInterval, r.cfg.PageChangeTimeout, r.cfg.PageChangeThreshold)
}

// StateDataSnapshot captures the current UI: raw HTML, merged template,
// precomputed tab order is left to GenerateTabOrder, and the set of
// elements eligible for action discovery.
func (r *RodAccess) StateDataSnapshot(ctx context.Context) (access.StateData, error) {
	html, err := r.page.HTML()
	if err != nil {
		return access.StateData{}, fmt.Errorf("%w: snapshot html: %v", crawlerr.ErrInterfaceTransient, err)
	}

	tmpl := htmltemplate.New()
	if err := tmpl.AddHTML(html); err != nil {
		return access.StateData{}, fmt.Errorf("%w: parse html: %v", crawlerr.ErrInterfaceTransient, err)
	}

	els, err := r.page.Elements(interactiveSelector)
	if err != nil {
		return access.StateData{}, fmt.Errorf("%w: query elements: %v", crawlerr.ErrInterfaceTransient, err)
	}

	elements := make([]access.Element, 0, len(els))
	for _, el := range els {
		ae, err := r.describeElement(el)
		if err != nil {
			continue
		}
		elements = append(elements, ae)
	}

	info, _ := r.page.Info()
	url := ""
	if info != nil {
		url = info.URL
	}

	return access.StateData{
		URL:               url,
		DOM:               html,
		Template:          tmpl,
		ElementsToExplore: elements,
	}, nil
}

func (r *RodAccess) describeElement(el *rod.Element) (access.Element, error) {
	tag, err := el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return access.Element{}, err
	}
	text, err := el.Text()
	if err != nil {
		text = ""
	}
	xp, err := el.Eval(xpathScript)
	if err != nil {
		return access.Element{}, err
	}
	attrsRes, err := el.Eval(`() => { const o = {}; for (const a of this.attributes) o[a.name] = a.value; return o; }`)
	attrs := map[string]string{}
	if err == nil {
		for k, v := range attrsRes.Value.Map() {
			attrs[k] = v.String()
		}
	}
	return access.Element{
		Xpath: xp.Value.String(),
		Tag:   tag.Value.String(),
		Text:  strings.TrimSpace(text),
		Attrs: attrs,
	}, nil
}

func (r *RodAccess) elementByXPath(xpath string) (*rod.Element, error) {
	el, err := r.page.ElementX(xpath)
	if err != nil {
		return nil, fmt.Errorf("%w: locate %s: %v", crawlerr.ErrInterfaceTransient, xpath, err)
	}
	return el, nil
}

// SetState reloads the entry point and replays h.Replay to deterministically
// reach the same state (spec.md's web StateHandle).
func (r *RodAccess) SetState(ctx context.Context, h access.StateHandle) (bool, error) {
	if ok, err := r.Load(ctx, r.entryPoint); err != nil || !ok {
		return ok, err
	}
	for _, step := range h.Replay {
		el, err := r.elementByXPath(step.Element.Xpath)
		if err != nil {
			return false, err
		}
		if err := r.interactElement(el, step.ActionName, nil); err != nil {
			return false, err
		}
		if _, err := r.waitStable(ctx); err != nil {
			return false, err
		}
	}
	r.replay = append([]access.ReplayStep(nil), h.Replay...)
	return true, nil
}

// SetStateDirect rebinds the cursor's bookkeeping without touching the UI;
// used when the caller knows the live page already reflects h.
func (r *RodAccess) SetStateDirect(ctx context.Context, h access.StateHandle) (bool, error) {
	r.replay = append([]access.ReplayStep(nil), h.Replay...)
	return true, nil
}

// IsStateValid reports whether the page is still alive and has a body.
func (r *RodAccess) IsStateValid(ctx context.Context) (bool, error) {
	if r.page == nil {
		return false, nil
	}
	_, err := r.page.Element("body")
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Actions returns the fixed, class-level action inventory.
func (r *RodAccess) Actions() []access.Action { return r.actions }

// PerformActionOnElement captures BuildData once, gates by the user's
// score, and attempts the action with bounded retries on transient errors
// (spec.md §4.6). It does not re-snapshot the page or wait for it to
// settle after the action.
func (r *RodAccess) PerformActionOnElement(ctx context.Context, user access.Scorer, act access.Action, el access.Element) (metrics.EdgeMetrics, error) {
	measurer := &elementMeasurer{ra: r, el: el}
	cache := builddata.New(measurer)
	if err := cache.CaptureAll(); err != nil {
		r.log.Warn("build data capture failed", zap.String("xpath", el.Xpath), zap.String("record_id", cache.RecordID()), zap.Error(err))
	}

	m := metrics.EdgeMetrics{BuildData: cache}
	if cr, err := cache.ContrastRatio(); err == nil {
		m.ContrastRatio = cr
	}
	if w, h, err := cache.Dimensions(); err == nil {
		m.ElementWidth, m.ElementHeight = w, h
	}

	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		start := time.Now()
		score, err := act.Execute(ctx, r, user, el, &m)
		m.ActTime = time.Since(start)
		if err == nil {
			m.AbilityScore = score
			r.replay = append(r.replay, access.ReplayStep{Element: el, ActionName: act.Name()})
			return m, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
	}
	return metrics.Zero(lastErr), lastErr
}

func isTransient(err error) bool {
	return err != nil && !isFatal(err)
}

func isFatal(err error) bool {
	return err != nil && (containsSentinel(err, crawlerr.ErrInterfaceFatal))
}

func containsSentinel(err, sentinel error) bool {
	for e := err; e != nil; {
		if e == sentinel {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

// Interact performs one low-level primitive on el.
func (r *RodAccess) Interact(ctx context.Context, el access.Element, verb string, args map[string]string) error {
	target, err := r.elementByXPath(el.Xpath)
	if err != nil {
		return err
	}
	return r.interactElement(target, verb, args)
}

func (r *RodAccess) interactElement(el *rod.Element, verb string, args map[string]string) error {
	switch verb {
	case "click":
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("%w: click: %v", crawlerr.ErrInterfaceTransient, err)
		}
	case "fill":
		if err := el.SelectAllText(); err == nil {
			_ = el.Input("")
		}
		if err := el.Input(args["value"]); err != nil {
			return fmt.Errorf("%w: fill: %v", crawlerr.ErrInterfaceTransient, err)
		}
	case "submit":
		if err := el.Type(input.Enter); err != nil {
			return fmt.Errorf("%w: submit: %v", crawlerr.ErrInterfaceTransient, err)
		}
	case "focus":
		if err := el.Focus(); err != nil {
			return fmt.Errorf("%w: focus: %v", crawlerr.ErrInterfaceTransient, err)
		}
	case "key_press":
		key, ok := keyboardKeys[args["key"]]
		if !ok {
			return fmt.Errorf("%w: key_press: unknown key %q", crawlerr.ErrInterfaceFatal, args["key"])
		}
		if err := el.Focus(); err != nil {
			return fmt.Errorf("%w: key_press: %v", crawlerr.ErrInterfaceTransient, err)
		}
		if err := el.Type(key); err != nil {
			return fmt.Errorf("%w: key_press: %v", crawlerr.ErrInterfaceTransient, err)
		}
	default:
		return fmt.Errorf("%w: unknown interact verb %q", crawlerr.ErrInterfaceFatal, verb)
	}
	return nil
}

// GenerateTabOrder advances focus with repeated Tab presses until an
// element is revisited more than cfg.NumRevisits times or no active
// element can be determined, recording focused/unfocused styles along the
// way for later focus analysis (C10).
func (r *RodAccess) GenerateTabOrder(ctx context.Context, startXPath string) (access.TabOrderResult, error) {
	if startXPath != "" {
		if el, err := r.elementByXPath(startXPath); err == nil {
			_ = el.Focus()
		}
	}

	result := access.TabOrderResult{StartElementXPath: startXPath}
	seen := map[string]int{}
	const maxEntries = 2000

	for i := 0; i < maxEntries; i++ {
		active, err := r.activeElement()
		if err != nil {
			break
		}
		xp, err := active.Eval(xpathScript)
		if err != nil {
			break
		}
		xpath := xp.Value.String()
		seen[xpath]++
		if seen[xpath] > r.cfg.NumRevisits {
			break
		}

		styleRes, err := active.Eval(styleScript)
		var focused access.Style
		var x, y int
		if err == nil {
			vals := styleRes.Value.Map()
			focused = styleFromMap(vals)
			x = int(vals["x"].Num())
			y = int(vals["y"].Num())
		}

		ae, _ := r.describeElement(active)

		if err := r.page.Keyboard.Type(input.Tab); err != nil {
			break
		}

		unfocusedStyle, _ := active.Eval(styleScript)
		var unfocused access.Style
		if unfocusedStyle != nil {
			unfocused = styleFromMap(unfocusedStyle.Value.Map())
		}

		result.Order = append(result.Order, access.TabEntry{
			Element:        ae,
			FocusedStyle:   focused,
			UnfocusedStyle: unfocused,
			X:              x,
			Y:              y,
			TabIndex:       i,
			VisitCount:     seen[xpath],
		})
	}

	if startXPath != "" {
		if el, err := r.elementByXPath(startXPath); err == nil {
			_ = el.Focus()
		}
	}
	return result, nil
}

func (r *RodAccess) activeElement() (*rod.Element, error) {
	obj, err := r.page.Eval(`() => document.activeElement`)
	if err != nil {
		return nil, err
	}
	return r.page.ElementFromObject(obj.RemoteObject)
}

func styleFromMap(m map[string]gson.JSON) access.Style {
	return access.Style{
		Color:           m["color"].String(),
		BackgroundColor: m["background"].String(),
		Outline:         m["outline"].String(),
		Border:          m["border"].String(),
		FontSize:        m["fontSize"].Num(),
	}
}

// Screenshot captures the current page as a PNG, used for the optional
// per-state screenshot file spec.md §6 names (config knob SCREENSHOTS).
func (r *RodAccess) Screenshot(ctx context.Context) ([]byte, error) {
	if r.page == nil {
		return nil, fmt.Errorf("%w: screenshot requested before Load", crawlerr.ErrInterfaceFatal)
	}
	format := proto.PageCaptureScreenshotFormatPng
	return r.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{Format: format})
}

// Reset returns to the entry point fresh, discarding replay history.
func (r *RodAccess) Reset(ctx context.Context) error {
	_, err := r.Load(ctx, r.entryPoint)
	return err
}

// Shutdown closes the page and the underlying browser.
func (r *RodAccess) Shutdown(ctx context.Context) error {
	if r.page != nil {
		_ = r.page.Close()
		r.page = nil
	}
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// elementMeasurer adapts one (RodAccess, Element) pair to
// builddata.MeasurementSource, capturing each field from the live page on
// first access only.
type elementMeasurer struct {
	ra *RodAccess
	el access.Element
}

func (m *elementMeasurer) Capture(field builddata.Field) (interface{}, error) {
	target, err := m.ra.elementByXPath(m.el.Xpath)
	if err != nil {
		return nil, err
	}
	switch field {
	case builddata.FieldTagName:
		return m.el.Tag, nil
	case builddata.FieldText:
		return m.el.Text, nil
	case builddata.FieldDescriptorTags:
		return m.el.Attrs, nil
	}

	res, err := target.Eval(styleScript)
	if err != nil {
		return nil, fmt.Errorf("%w: capture style: %v", crawlerr.ErrAnalyzerDataGap, err)
	}
	vals := res.Value.Map()
	switch field {
	case builddata.FieldForegroundColor:
		return vals["color"].String(), nil
	case builddata.FieldBackgroundColor:
		return vals["background"].String(), nil
	case builddata.FieldContrastRatio:
		return contrastRatio(vals["color"].String(), vals["background"].String()), nil
	case builddata.FieldHeight:
		return vals["height"].Num(), nil
	case builddata.FieldWidth:
		return vals["width"].Num(), nil
	case builddata.FieldFontSize:
		return vals["fontSize"].Num(), nil
	case builddata.FieldPixelX:
		return vals["x"].Num(), nil
	case builddata.FieldPixelY:
		return vals["y"].Num(), nil
	case builddata.FieldPixelDistanceFromPriorFocus, builddata.FieldTabDistanceFromPriorFocus:
		return 0.0, nil
	}
	return nil, fmt.Errorf("unsupported build data field %d", field)
}

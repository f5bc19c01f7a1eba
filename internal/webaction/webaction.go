// Package webaction provides the concrete, domain-specific actions (mouse
// click, toggle, form fill, keyboard activation) that spec.md §1 keeps
// outside the core: the core only defines the Action contract
// (internal/access, internal/action); these are one reference realization
// of it, built on InterfaceAccess's generic Interact primitive.
package webaction

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a11ycrawl/a11ycrawl/internal/access"
	"github.com/a11ycrawl/a11ycrawl/internal/action"
)

// Click is a non-repeatable mouse activation of any clickable element.
func Click(reg *action.Registry) access.Action {
	return reg.Intern("click", "", func() access.Action {
		return action.New(
			"click",
			false,
			clickableElements,
			func(ctx context.Context, ia access.InterfaceAccess, el access.Element) error {
				return ia.Interact(ctx, el, "click", nil)
			},
			nil,
		)
	})
}

// Toggle is a repeatable click used for elements that flip between two
// states (expand/collapse, show/hide). It reverses to itself: toggling
// twice on the same element is, by construction, an undo.
func Toggle(reg *action.Registry) access.Action {
	var self access.Action
	self = reg.Intern("toggle", "", func() access.Action {
		return action.New(
			"toggle",
			true,
			toggleableElements,
			func(ctx context.Context, ia access.InterfaceAccess, el access.Element) error {
				return ia.Interact(ctx, el, "click", nil)
			},
			func() (access.Action, bool) { return self, true },
		)
	})
	return self
}

// FormFill tries candidate values for a required field in order, stopping
// at the first that is accepted (spec.md §8 scenario 4). Only one success
// edge is expected out of the form state.
func FormFill(reg *action.Registry, fieldValues []string) access.Action {
	return reg.Intern("form_fill", fmt.Sprint(fieldValues), func() access.Action {
		return action.New(
			"form_fill",
			false,
			formFieldElements,
			func(ctx context.Context, ia access.InterfaceAccess, el access.Element) error {
				var lastErr error
				for _, v := range fieldValues {
					if err := ia.Interact(ctx, el, "fill", map[string]string{"value": v}); err != nil {
						lastErr = err
						continue
					}
					if err := ia.Interact(ctx, el, "submit", nil); err != nil {
						lastErr = err
						continue
					}
					return nil
				}
				return fmt.Errorf("form_fill: no candidate value accepted: %w", lastErr)
			},
			nil,
		)
	})
}

// KeyActivate is the keyboard-only counterpart to Click: it presses Enter
// on a focusable element rather than dispatching a mouse event, so a
// crawl user whose ability model cannot perform mouse actions still
// discovers the edges a sighted mouse user would reach by clicking.
func KeyActivate(reg *action.Registry) access.Action {
	return reg.Intern("key_activate", "", func() access.Action {
		return action.New(
			"key_activate",
			false,
			keyboardActivatableElements,
			func(ctx context.Context, ia access.InterfaceAccess, el access.Element) error {
				return ia.Interact(ctx, el, "key_press", map[string]string{"key": "Enter"})
			},
			nil,
		)
	})
}

// Follow clicks a link (an <a> element), used for stub-outbound-link
// detection (spec.md §8 scenario 3).
func Follow(reg *action.Registry) access.Action {
	return reg.Intern("follow", "", func() access.Action {
		return action.New(
			"follow",
			false,
			linkElements,
			func(ctx context.Context, ia access.InterfaceAccess, el access.Element) error {
				return ia.Interact(ctx, el, "click", nil)
			},
			nil,
		)
	})
}

func clickableElements(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error) {
	sd, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	tags := map[string]bool{"button": true, "a": true}
	var out []access.Element
	for _, el := range sd.ElementsToExplore {
		if tags[el.Tag] || el.Attrs["role"] == "button" {
			out = append(out, el)
			continue
		}
		if _, ok := el.Attrs["onclick"]; ok {
			out = append(out, el)
		}
	}
	return out, nil
}

func toggleableElements(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error) {
	return filterAttr(ctx, ia, "aria-expanded")
}

// keyboardActivatableElements mirrors clickableElements but additionally
// admits anything with an explicit non-negative tabindex, since a
// keyboard user can focus (and then activate) elements a mouse user would
// never need tab order for.
func keyboardActivatableElements(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error) {
	sd, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	tags := map[string]bool{"button": true, "a": true}
	var out []access.Element
	for _, el := range sd.ElementsToExplore {
		if tags[el.Tag] || el.Attrs["role"] == "button" {
			out = append(out, el)
			continue
		}
		if ti, ok := el.Attrs["tabindex"]; ok {
			if n, err := strconv.Atoi(ti); err == nil && n >= 0 {
				out = append(out, el)
			}
		}
	}
	return out, nil
}

func formFieldElements(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error) {
	return filterTags(ctx, ia, "input", "textarea", "select")
}

func linkElements(ctx context.Context, ia access.InterfaceAccess) ([]access.Element, error) {
	return filterTags(ctx, ia, "a")
}

func filterTags(ctx context.Context, ia access.InterfaceAccess, tags ...string) ([]access.Element, error) {
	sd, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, t := range tags {
		want[t] = true
	}
	var out []access.Element
	for _, el := range sd.ElementsToExplore {
		if want[el.Tag] {
			out = append(out, el)
		}
	}
	return out, nil
}

func filterAttr(ctx context.Context, ia access.InterfaceAccess, attr string) ([]access.Element, error) {
	sd, err := ia.StateDataSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []access.Element
	for _, el := range sd.ElementsToExplore {
		if _, ok := el.Attrs[attr]; ok {
			out = append(out, el)
		}
	}
	return out, nil
}

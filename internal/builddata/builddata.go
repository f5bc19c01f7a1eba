// Package builddata implements the lazy per-edge measurement cache (C6).
// Each field is captured at most once, on first access, from a
// MeasurementSource; downstream simulated users consume the cache
// read-only without ever touching the live interface.
package builddata

import (
	"sync"

	"github.com/google/uuid"
)

// Field names one lazily captured measurement.
type Field int

const (
	FieldForegroundColor Field = iota
	FieldBackgroundColor
	FieldContrastRatio
	FieldHeight
	FieldWidth
	FieldFontSize
	FieldPixelX
	FieldPixelY
	FieldPixelDistanceFromPriorFocus
	FieldTabDistanceFromPriorFocus
	FieldTagName
	FieldText
	FieldDescriptorTags
	fieldCount
)

// MeasurementSource captures one field for one (state, action, element)
// triple. Concrete InterfaceAccess implementations (internal/webaccess)
// satisfy this structurally; builddata has no compile-time dependency on
// the access contract, which keeps the capability graph acyclic.
type MeasurementSource interface {
	Capture(field Field) (interface{}, error)
}

// Cache is a lazy key-value map of interface measurements about one edge.
type Cache struct {
	mu         sync.Mutex
	source     MeasurementSource
	values     [fieldCount]interface{}
	have       [fieldCount]bool
	isCaptured bool
	recordID   string
}

// New wraps a measurement source. Nothing is captured until first access.
// Each cache gets a unique record id so a capture can be traced back
// through logs independent of which edge or worker produced it.
func New(source MeasurementSource) *Cache {
	return &Cache{source: source, recordID: uuid.NewString()}
}

// RecordID identifies this capture record for log correlation.
func (c *Cache) RecordID() string {
	return c.recordID
}

// Get lazily captures and memoizes field.
func (c *Cache) Get(field Field) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.have[field] {
		return c.values[field], nil
	}
	v, err := c.source.Capture(field)
	if err != nil {
		return nil, err
	}
	c.values[field] = v
	c.have[field] = true
	return v, nil
}

// CaptureAll forces every field and flips IsCaptured. Called exactly once
// per edge during the build pass (spec.md §4.6).
func (c *Cache) CaptureAll() error {
	for f := Field(0); f < fieldCount; f++ {
		if _, err := c.Get(f); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.isCaptured = true
	c.mu.Unlock()
	return nil
}

// IsCaptured reports whether CaptureAll has completed successfully. A
// simulated re-crawl rejects any edge whose cache is not captured.
func (c *Cache) IsCaptured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCaptured
}

// ContrastRatio is a typed convenience accessor over FieldContrastRatio.
func (c *Cache) ContrastRatio() (float64, error) {
	v, err := c.Get(FieldContrastRatio)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float64)
	return f, nil
}

// Dimensions is a typed convenience accessor over width/height.
func (c *Cache) Dimensions() (w, h float64, err error) {
	wv, err := c.Get(FieldWidth)
	if err != nil {
		return 0, 0, err
	}
	hv, err := c.Get(FieldHeight)
	if err != nil {
		return 0, 0, err
	}
	w, _ = wv.(float64)
	h, _ = hv.(float64)
	return w, h, nil
}

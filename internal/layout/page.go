package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PageSize holds paper dimensions in centimetres.
type PageSize struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

var (
	// A4 is the default photo sheet.
	A4     = PageSize{Width: 21.0, Height: 29.7}
	A5     = PageSize{Width: 14.8, Height: 21.0}
	Letter = PageSize{Width: 21.59, Height: 27.94}
)

var namedSizes = map[string]PageSize{
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
}

// LookupPageSize resolves a named paper size, ignoring case.
func LookupPageSize(name string) (PageSize, bool) {
	size, ok := namedSizes[strings.ToLower(strings.TrimSpace(name))]
	return size, ok
}

// ParsePageSize accepts either a known name ("A4") or explicit dimensions ("21x29.7").
func ParsePageSize(raw string) (PageSize, error) {
	if size, ok := LookupPageSize(raw); ok {
		return size, nil
	}

	w, h, found := strings.Cut(strings.ToLower(strings.TrimSpace(raw)), "x")
	if !found {
		return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, raw)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return PageSize{}, fmt.Errorf("invalid page width %q", w)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return PageSize{}, fmt.Errorf("invalid page height %q", h)
	}

	size := PageSize{Width: width, Height: height}
	if !size.Valid() {
		return PageSize{}, ErrInvalidPage
	}
	return size, nil
}

// Valid reports whether both dimensions are positive and finite.
func (p PageSize) Valid() bool {
	return positive(p.Width) && positive(p.Height)
}

// Area returns the page area.
func (p PageSize) Area() float64 {
	return p.Width * p.Height
}

// Usable reports whether padding is a finite non-negative margin that leaves room on the page.
func (p PageSize) Usable(padding float64) bool {
	if math.IsNaN(padding) || math.IsInf(padding, 0) || padding < 0 {
		return false
	}
	return p.Valid() && padding < p.Width-padding && padding < p.Height-padding
}

// fits mirrors the cursor checks of the packer at a fresh row on a fresh page,
// so an item accepted here is always placeable.
func (p PageSize) fits(width, height, padding float64) bool {
	return padding+width <= p.Width-padding && padding+height <= p.Height-padding
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

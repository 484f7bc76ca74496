package layout

import (
	"fmt"

	"github.com/eugenenazirov/print-layout/internal/printjob"
)

type shelfPacker struct{}

// New creates a Packer using greedy left-to-right, top-to-bottom shelf packing.
func New() Packer {
	return &shelfPacker{}
}

// PackLayout packs items with the default shelf packer.
func PackLayout(items []printjob.PrintItem, page PageSize, padding float64) []PageBin {
	return New().Pack(items, page, padding)
}

// Pack expands every item into its copies, in item then copy order, and
// places them row by row. It never fails: invalid items, zero copies and
// items larger than the usable area are skipped, and an unusable page or
// padding yields no pages. There is no rotation or reordering.
func (s *shelfPacker) Pack(items []printjob.PrintItem, page PageSize, padding float64) []PageBin {
	pages := []PageBin{}
	if !page.Usable(padding) {
		return pages
	}

	current := newBin(page)
	x, y, rowHeight := padding, padding, 0.0

	nextPage := func() {
		if len(current.Placements) > 0 {
			pages = append(pages, current)
		}
		current = newBin(page)
		x, y, rowHeight = padding, padding, 0
	}

	for idx, item := range items {
		if !item.Billable() {
			continue
		}
		w, h := float64(item.Width), float64(item.Height)
		if !page.fits(w, h, padding) {
			continue
		}

		for c := range item.Copies {
			if y+h > page.Height-padding {
				nextPage()
			}
			if x+w > page.Width-padding {
				x = padding
				y += rowHeight + padding
				rowHeight = 0
				if y+h > page.Height-padding {
					nextPage()
				}
			}

			current.Placements = append(current.Placements, Placement{
				Item:   idx,
				Copy:   c + 1,
				X:      x,
				Y:      y,
				Width:  w,
				Height: h,
			})

			x += w + padding
			rowHeight = max(rowHeight, h)
		}
	}

	if len(current.Placements) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// PackStrict validates its input before packing and reports anything Pack
// would silently drop.
func PackStrict(items []printjob.PrintItem, page PageSize, padding float64) ([]PageBin, error) {
	if !page.Valid() {
		return nil, ErrInvalidPage
	}
	if !page.Usable(padding) {
		return nil, ErrInvalidPadding
	}
	if err := printjob.Validate(items); err != nil {
		return nil, err
	}
	if skipped := Skipped(items, page, padding); len(skipped) > 0 {
		idx := skipped[0]
		return nil, fmt.Errorf("item %d (%vx%v): %w", idx, items[idx].Width, items[idx].Height, ErrItemTooLarge)
	}
	return PackLayout(items, page, padding), nil
}

// Skipped returns the indices of billable items too large for the usable area.
// These are still priced but never appear on a page.
func Skipped(items []printjob.PrintItem, page PageSize, padding float64) []int {
	out := []int{}
	if !page.Usable(padding) {
		for i, item := range items {
			if item.Billable() {
				out = append(out, i)
			}
		}
		return out
	}
	for i, item := range items {
		if item.Billable() && !page.fits(float64(item.Width), float64(item.Height), padding) {
			out = append(out, i)
		}
	}
	return out
}

// Summarize counts pages and placements and reports the share of page area covered.
func Summarize(pages []PageBin) Summary {
	var summary Summary
	var placedArea, pageArea float64
	for _, page := range pages {
		summary.Pages++
		summary.Placements += len(page.Placements)
		pageArea += page.Width * page.Height
		for _, p := range page.Placements {
			placedArea += p.Width * p.Height
		}
	}
	if pageArea > 0 {
		summary.Utilization = placedArea / pageArea
	}
	return summary
}

func newBin(page PageSize) PageBin {
	return PageBin{
		Width:      page.Width,
		Height:     page.Height,
		Placements: []Placement{},
	}
}

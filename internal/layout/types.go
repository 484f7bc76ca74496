package layout

import "github.com/eugenenazirov/print-layout/internal/printjob"

// Placement is one printed copy of an item positioned on a page.
// Item is the index of the source item in the caller's slice; Copy is 1-based.
type Placement struct {
	Item   int     `json:"item"`
	Copy   int     `json:"copy"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageBin is one physical output page and the copies placed on it, in packing order.
type PageBin struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Placements []Placement `json:"placements"`
}

// Summary aggregates a packing result.
type Summary struct {
	Pages       int     `json:"pages"`
	Placements  int     `json:"placements"`
	Utilization float64 `json:"utilization"`
}

// Packer describes the behaviour required from a page layout packer.
type Packer interface {
	Pack(items []printjob.PrintItem, page PageSize, padding float64) []PageBin
}

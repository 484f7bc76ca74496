package layout

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/eugenenazirov/print-layout/internal/printjob"
)

func TestPackPlacements(t *testing.T) {
	t.Parallel()

	square := PageSize{Width: 100, Height: 100}
	small := PageSize{Width: 40, Height: 40}

	tests := []struct {
		name    string
		items   []printjob.PrintItem
		page    PageSize
		padding float64
		want    [][]Placement
	}{
		{
			name: "CopiesStayGroupedInItemOrder",
			items: []printjob.PrintItem{
				{Width: 5, Height: 5, Copies: 3},
				{Width: 8, Height: 8, Copies: 1},
				{Width: 120, Height: 120, Copies: 1},
			},
			page:    square,
			padding: 5,
			want: [][]Placement{{
				{Item: 0, Copy: 1, X: 5, Y: 5, Width: 5, Height: 5},
				{Item: 0, Copy: 2, X: 15, Y: 5, Width: 5, Height: 5},
				{Item: 0, Copy: 3, X: 25, Y: 5, Width: 5, Height: 5},
				{Item: 1, Copy: 1, X: 35, Y: 5, Width: 8, Height: 8},
			}},
		},
		{
			name:    "WrapsRowsThenOpensNewPage",
			items:   []printjob.PrintItem{{Width: 10, Height: 10, Copies: 5}},
			page:    small,
			padding: 5,
			want: [][]Placement{
				{
					{Item: 0, Copy: 1, X: 5, Y: 5, Width: 10, Height: 10},
					{Item: 0, Copy: 2, X: 20, Y: 5, Width: 10, Height: 10},
					{Item: 0, Copy: 3, X: 5, Y: 20, Width: 10, Height: 10},
					{Item: 0, Copy: 4, X: 20, Y: 20, Width: 10, Height: 10},
				},
				{
					{Item: 0, Copy: 5, X: 5, Y: 5, Width: 10, Height: 10},
				},
			},
		},
		{
			name: "RowAdvancesByTallestItem",
			items: []printjob.PrintItem{
				{Width: 10, Height: 20, Copies: 1},
				{Width: 10, Height: 5, Copies: 2},
			},
			page:    PageSize{Width: 40, Height: 60},
			padding: 5,
			want: [][]Placement{{
				{Item: 0, Copy: 1, X: 5, Y: 5, Width: 10, Height: 20},
				{Item: 1, Copy: 1, X: 20, Y: 5, Width: 10, Height: 5},
				{Item: 1, Copy: 2, X: 5, Y: 30, Width: 10, Height: 5},
			}},
		},
		{
			name:    "ItemExactlyFillingUsableArea",
			items:   []printjob.PrintItem{{Width: 90, Height: 90, Copies: 2}},
			page:    square,
			padding: 5,
			want: [][]Placement{
				{{Item: 0, Copy: 1, X: 5, Y: 5, Width: 90, Height: 90}},
				{{Item: 0, Copy: 2, X: 5, Y: 5, Width: 90, Height: 90}},
			},
		},
		{
			name:    "ZeroPadding",
			items:   []printjob.PrintItem{{Width: 50, Height: 50, Copies: 4}},
			page:    square,
			padding: 0,
			want: [][]Placement{{
				{Item: 0, Copy: 1, X: 0, Y: 0, Width: 50, Height: 50},
				{Item: 0, Copy: 2, X: 50, Y: 0, Width: 50, Height: 50},
				{Item: 0, Copy: 3, X: 0, Y: 50, Width: 50, Height: 50},
				{Item: 0, Copy: 4, X: 50, Y: 50, Width: 50, Height: 50},
			}},
		},
		{
			name: "InvalidItemsContributeNothing",
			items: []printjob.PrintItem{
				{Width: -5, Height: 10, Copies: 3},
				{Width: 10, Height: 10, Copies: 0},
				{Width: 10, Height: 10, Copies: -2},
				{Width: 10, Height: 10, Copies: 1},
			},
			page:    square,
			padding: 5,
			want: [][]Placement{{
				{Item: 3, Copy: 1, X: 5, Y: 5, Width: 10, Height: 10},
			}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pages := New().Pack(tc.items, tc.page, tc.padding)
			if len(pages) != len(tc.want) {
				t.Fatalf("expected %d pages, got %d: %+v", len(tc.want), len(pages), pages)
			}
			for i, page := range pages {
				if page.Width != tc.page.Width || page.Height != tc.page.Height {
					t.Fatalf("page %d has size %vx%v", i, page.Width, page.Height)
				}
				if !reflect.DeepEqual(page.Placements, tc.want[i]) {
					t.Fatalf("page %d placements:\n got  %+v\n want %+v", i, page.Placements, tc.want[i])
				}
			}
		})
	}
}

func TestPackYieldsNoPages(t *testing.T) {
	t.Parallel()

	item := []printjob.PrintItem{{Width: 10, Height: 10, Copies: 1}}

	cases := map[string]struct {
		items   []printjob.PrintItem
		page    PageSize
		padding float64
	}{
		"empty input":       {items: nil, page: A4, padding: 0.5},
		"all too large":     {items: []printjob.PrintItem{{Width: 30, Height: 10, Copies: 2}}, page: A4, padding: 0.5},
		"zero page":         {items: item, page: PageSize{}, padding: 0},
		"negative padding":  {items: item, page: PageSize{Width: 100, Height: 100}, padding: -1},
		"NaN padding":       {items: item, page: PageSize{Width: 100, Height: 100}, padding: math.NaN()},
		"padding eats page": {items: item, page: PageSize{Width: 100, Height: 100}, padding: 50},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			pages := PackLayout(tc.items, tc.page, tc.padding)
			if pages == nil || len(pages) != 0 {
				t.Fatalf("expected empty non-nil result, got %+v", pages)
			}
		})
	}
}

func TestPackOversizedItemsAreNeverPlaced(t *testing.T) {
	t.Parallel()

	items := []printjob.PrintItem{
		{Width: 5, Height: 5, Copies: 3},
		{Width: 8, Height: 8, Copies: 1},
		{Width: 91, Height: 10, Copies: 2},
		{Width: 10, Height: 91, Copies: 2},
	}
	page := PageSize{Width: 100, Height: 100}

	pages := PackLayout(items, page, 5)
	for _, p := range pages {
		for _, placement := range p.Placements {
			if placement.Item >= 2 {
				t.Fatalf("oversized item %d was placed", placement.Item)
			}
		}
	}

	if got, want := Skipped(items, page, 5), []int{2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected skipped %v, got %v", want, got)
	}
}

func TestPackProperties(t *testing.T) {
	t.Parallel()

	items := []printjob.PrintItem{
		{Width: 10, Height: 15, Copies: 7},
		{Width: 13, Height: 18, Copies: 3},
		{Width: 5.5, Height: 8.5, Copies: 11},
		{Width: 25, Height: 25, Copies: 2},
		{Width: 9, Height: 13, Copies: 4},
	}
	padding := 0.5

	pages := PackLayout(items, A4, padding)

	expected := 0
	skipped := map[int]bool{}
	for _, idx := range Skipped(items, A4, padding) {
		skipped[idx] = true
	}
	for i, item := range items {
		if !skipped[i] {
			expected += item.Copies
		}
	}

	placed := 0
	for i, page := range pages {
		if len(page.Placements) == 0 {
			t.Fatalf("page %d is empty", i)
		}
		for _, p := range page.Placements {
			placed++
			if p.X < padding || p.Y < padding {
				t.Fatalf("placement %+v violates the leading margin", p)
			}
			if p.X+p.Width > page.Width || p.Y+p.Height > page.Height {
				t.Fatalf("placement %+v exceeds page %vx%v", p, page.Width, page.Height)
			}
		}
	}
	if placed != expected {
		t.Fatalf("expected %d placements, got %d", expected, placed)
	}

	again := PackLayout(items, A4, padding)
	if !reflect.DeepEqual(pages, again) {
		t.Fatalf("packing is not deterministic")
	}
}

func TestPackDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	items := []printjob.PrintItem{{Width: 10, Height: 10, Copies: 2}}
	snapshot := append([]printjob.PrintItem(nil), items...)

	_ = PackLayout(items, A4, 0.5)

	if !reflect.DeepEqual(items, snapshot) {
		t.Fatalf("input was mutated: %+v", items)
	}
}

func TestPackStrict(t *testing.T) {
	t.Parallel()

	page := PageSize{Width: 100, Height: 100}

	if _, err := PackStrict(nil, PageSize{}, 0); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if _, err := PackStrict(nil, page, 60); !errors.Is(err, ErrInvalidPadding) {
		t.Fatalf("expected ErrInvalidPadding, got %v", err)
	}
	if _, err := PackStrict([]printjob.PrintItem{{Width: -1, Height: 1, Copies: 1}}, page, 5); !errors.Is(err, printjob.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
	if _, err := PackStrict([]printjob.PrintItem{{Width: 95, Height: 10, Copies: 1}}, page, 5); !errors.Is(err, ErrItemTooLarge) {
		t.Fatalf("expected ErrItemTooLarge, got %v", err)
	}

	pages, err := PackStrict([]printjob.PrintItem{{Width: 10, Height: 10, Copies: 2}}, page, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || len(pages[0].Placements) != 2 {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	pages := PackLayout([]printjob.PrintItem{{Width: 50, Height: 50, Copies: 5}}, PageSize{Width: 100, Height: 100}, 0)
	summary := Summarize(pages)

	if summary.Pages != 2 || summary.Placements != 5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if want := 5 * 2500.0 / 20000.0; summary.Utilization != want {
		t.Fatalf("expected utilization %v, got %v", want, summary.Utilization)
	}

	if empty := Summarize(nil); empty != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func BenchmarkPackA4(b *testing.B) {
	items := []printjob.PrintItem{
		{Width: 10, Height: 15, Copies: 200},
		{Width: 5, Height: 5, Copies: 500},
		{Width: 13, Height: 18, Copies: 100},
	}
	packer := New()
	for i := 0; i < b.N; i++ {
		_ = packer.Pack(items, A4, 0.5)
	}
}

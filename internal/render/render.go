// Package render draws packed page layouts as a printable PDF preview, one
// PDF page per layout page, with each placed copy outlined at its position.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/eugenenazirov/print-layout/internal/layout"
)

// ErrNoPages is returned when there is nothing to render.
var ErrNoPages = errors.New("layout has no pages to render")

const labelMinWidth = 1.5

// Option configures rendering.
type Option func(*options)

type options struct {
	title  string
	labels bool
}

// WithTitle sets the PDF document title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithLabels controls whether each placement is annotated with its item, copy and size.
func WithLabels(enabled bool) Option {
	return func(o *options) {
		o.labels = enabled
	}
}

// Document builds the PDF for pages. Coordinates are taken as centimetres.
func Document(pages []layout.PageBin, opts ...Option) (*gofpdf.Fpdf, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	cfg := options{title: "Print layout", labels: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	first := pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "cm",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetTitle(cfg.title, true)
	pdf.SetCreator("print-layout", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetLineWidth(0.02)
	pdf.SetDrawColor(90, 90, 90)

	for _, page := range pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, p := range page.Placements {
			pdf.Rect(p.X, p.Y, p.Width, p.Height, "D")
			if cfg.labels && p.Width >= labelMinWidth {
				pdf.Text(p.X+0.1, p.Y+0.3, fmt.Sprintf("#%d.%d %gx%g", p.Item+1, p.Copy, p.Width, p.Height))
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

// Sheets writes the PDF preview of pages to w.
func Sheets(w io.Writer, pages []layout.PageBin, opts ...Option) error {
	pdf, err := Document(pages, opts...)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

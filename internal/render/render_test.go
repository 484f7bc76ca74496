package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/print-layout/internal/layout"
	"github.com/eugenenazirov/print-layout/internal/printjob"
)

func TestDocumentOnePDFPagePerLayoutPage(t *testing.T) {
	pages := layout.PackLayout([]printjob.PrintItem{{Width: 9, Height: 13, Copies: 6}}, layout.A4, 0.5)
	require.Len(t, pages, 2)

	pdf, err := Document(pages, WithTitle("order 42"))
	require.NoError(t, err)
	assert.Equal(t, 2, pdf.PageCount())
}

func TestSheetsWritesPDF(t *testing.T) {
	pages := layout.PackLayout([]printjob.PrintItem{{Width: 5, Height: 5, Copies: 3}}, layout.A4, 0.5)

	var buf bytes.Buffer
	require.NoError(t, Sheets(&buf, pages, WithLabels(false)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should be a PDF document")
}

func TestSheetsRejectsEmptyLayout(t *testing.T) {
	var buf bytes.Buffer
	err := Sheets(&buf, nil)
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Zero(t, buf.Len())
}

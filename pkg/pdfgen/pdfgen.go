package pdfgen

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Instruction places one line of text at an absolute position on the page,
// measured in points from the top-left corner.
type Instruction struct {
	X    float64
	Y    float64
	Text string
}

// Render draws the instructions onto a single A4 page and returns the
// PDF bytes
func Render(instructions []Instruction) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()

	for _, ins := range instructions {
		pdf.Text(ins.X, ins.Y, ins.Text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buf.Bytes(), nil
}

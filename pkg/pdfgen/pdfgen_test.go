package pdfgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Run("Produces A PDF", func(t *testing.T) {
		out, err := Render([]Instruction{
			{X: 72, Y: 72, Text: "Rent Agreement"},
			{X: 72, Y: 92, Text: "Monthly Rent: BDT 15000.00"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, out)

		assert.Equal(t, "%PDF", string(out[:4]))
	})

	t.Run("Empty Instructions Still Render A Page", func(t *testing.T) {
		out, err := Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(out[:4]))
	})
}

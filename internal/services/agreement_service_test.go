package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/bashabari/rental-backend/internal/models"
)

func TestBuildDocument(t *testing.T) {
	agreement := &models.RentAgreement{
		RentAmount:      15500.50,
		DurationMonths:  12,
		TenantSignature: "Karim Ahmed",
		SignedAt:        time.Date(2025, 8, 15, 14, 30, 0, 0, time.UTC),
		TenantUsername:  models.NewNullString("karim"),
		OwnerUsername:   models.NewNullString("rahim"),
		ListingTitle:    models.NewNullString("Flat in Dhanmondi"),
	}

	t.Run("Contains Agreement Terms", func(t *testing.T) {
		instructions := BuildDocument(agreement)
		require.NotEmpty(t, instructions)

		var texts []string
		for _, ins := range instructions {
			texts = append(texts, ins.Text)
		}

		assert.Equal(t, "Rent Agreement", texts[0])
		assert.Contains(t, texts, "Listing: Flat in Dhanmondi")
		assert.Contains(t, texts, "Tenant: karim")
		assert.Contains(t, texts, "Owner: rahim")
		assert.Contains(t, texts, "Monthly Rent: BDT 15500.50")
		assert.Contains(t, texts, "Duration: 12 months")
		assert.Contains(t, texts, "Signed At: 2025-08-15 14:30")
		assert.Contains(t, texts, "Tenant Signature: Karim Ahmed")
	})

	t.Run("Unsigned Owner Omits Signature Line", func(t *testing.T) {
		instructions := BuildDocument(agreement)
		for _, ins := range instructions {
			assert.NotContains(t, ins.Text, "Owner Signature")
		}
	})

	t.Run("Signed Owner Shows Name", func(t *testing.T) {
		signed := *agreement
		signed.OwnerSignature = models.NewNullString("Rahim Uddin")

		instructions := BuildDocument(&signed)
		last := instructions[len(instructions)-1]
		assert.Equal(t, "Owner Signature: Rahim Uddin", last.Text)
	})

	t.Run("Lines Descend The Page", func(t *testing.T) {
		instructions := BuildDocument(agreement)
		for i := 1; i < len(instructions); i++ {
			assert.Greater(t, instructions[i].Y, instructions[i-1].Y)
		}
	})
}

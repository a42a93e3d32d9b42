package policy

import (
	"testing"
	"time"

	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeCancellation_Windows(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})
	departure := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		hoursBefore time.Duration
		penaltyPct  int64
		refundPct   int64
	}{
		{"under 24h", 10 * time.Hour, 100, 0},
		{"30h before departure", 30 * time.Hour, 50, 50},
		{"exactly 24h", 24 * time.Hour, 50, 50},
		{"60h before departure", 60 * time.Hour, 35, 65},
		{"exactly 48h", 48 * time.Hour, 35, 65},
		{"a week before", 7 * 24 * time.Hour, 25, 75},
		{"exactly 72h", 72 * time.Hour, 25, 75},
		{"after departure", -2 * time.Hour, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := departure.Add(-tt.hoursBefore)
			quote := rates.ComputeCancellation(1_000_000, departure, now, domain.RoleCustomer, domain.TierPremium)

			assert.True(t, quote.Allowed)
			assert.Equal(t, tt.penaltyPct, quote.PenaltyPct)
			assert.Equal(t, tt.refundPct, quote.RefundPct)
			assert.Equal(t, int64(1_000_000), quote.PenaltyCents+quote.RefundCents)
		})
	}
}

// Penalty plus refund must equal the base price exactly for every bucket and
// price, including ones that do not divide evenly.
func TestComputeCancellation_NoCurrencyLeakage(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})
	departure := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	prices := []int64{1, 3, 99, 101, 12345, 999_999, 1_000_000, 2_000_001}
	offsets := []time.Duration{time.Hour, 30 * time.Hour, 60 * time.Hour, 100 * time.Hour}

	for _, price := range prices {
		for _, offset := range offsets {
			quote := rates.ComputeCancellation(price, departure, departure.Add(-offset), domain.RoleCustomer, domain.TierBasic)
			assert.Equalf(t, price, quote.PenaltyCents+quote.RefundCents, "price=%d offset=%s", price, offset)
		}
	}
}

func TestComputeCancellation_PremiumThirtyHours(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})
	departure := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	now := departure.Add(-30 * time.Hour)

	// $10,000 booking cancelled 30 hours out splits 50/50
	quote := rates.ComputeCancellation(1_000_000, departure, now, domain.RoleCustomer, domain.TierPremium)

	assert.True(t, quote.Allowed)
	assert.Equal(t, int64(500_000), quote.PenaltyCents)
	assert.Equal(t, int64(500_000), quote.RefundCents)
}

func TestComputeCancellation_StandardTierHasNoRights(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})
	departure := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	// the window never matters for standard tier
	for _, offset := range []time.Duration{time.Hour, 30 * time.Hour, 200 * time.Hour} {
		quote := rates.ComputeCancellation(1_000_000, departure, departure.Add(-offset), domain.RoleCustomer, domain.TierStandard)

		assert.False(t, quote.Allowed)
		assert.Equal(t, int64(1_000_000), quote.PenaltyCents)
		assert.Equal(t, int64(0), quote.RefundCents)
	}
}

func TestComputeCancellation_OperatorUsesWindowTable(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})
	departure := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	now := departure.Add(-60 * time.Hour)

	quote := rates.ComputeCancellation(200_000, departure, now, domain.RoleOperator, "")

	assert.True(t, quote.Allowed)
	assert.Equal(t, int64(35), quote.PenaltyPct)
	assert.Equal(t, int64(70_000), quote.PenaltyCents)
	assert.Equal(t, int64(130_000), quote.RefundCents)
}

func TestComputeCancellation_RoundsHalfUp(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})
	departure := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	now := departure.Add(-30 * time.Hour)

	// 50% of 101 cents rounds 50.5 up to 51
	quote := rates.ComputeCancellation(101, departure, now, domain.RoleCustomer, domain.TierBasic)

	assert.Equal(t, int64(51), quote.PenaltyCents)
	assert.Equal(t, int64(50), quote.RefundCents)
}

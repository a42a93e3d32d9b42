package policy

import (
	"testing"
	"time"

	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount_Tiers(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})

	tests := []struct {
		tier   domain.MembershipTier
		pct    int64
		amount int64
	}{
		{domain.TierStandard, 0, 0},
		{domain.TierBasic, 5, 100_000},
		{domain.TierPremium, 10, 200_000},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			// $20,000 base price
			discount := rates.ComputeDiscount(2_000_000, tt.tier, DiscountUsage{})
			assert.Equal(t, tt.pct, discount.Percentage)
			assert.Equal(t, tt.amount, discount.AmountCents)
			assert.Empty(t, discount.CappedReason)
		})
	}
}

func TestComputeDiscount_PerOperatorCap(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})

	// two prior discounted bookings with this operator exhaust the pair cap
	discount := rates.ComputeDiscount(2_000_000, domain.TierBasic, DiscountUsage{WithOperator: 2, Total: 2})

	assert.Equal(t, int64(0), discount.Percentage)
	assert.Equal(t, int64(0), discount.AmountCents)
	assert.Equal(t, CappedPerOperator, discount.CappedReason)

	// a different operator still yields the full tier discount
	other := rates.ComputeDiscount(2_000_000, domain.TierBasic, DiscountUsage{WithOperator: 0, Total: 2})
	assert.Equal(t, int64(5), other.Percentage)
	assert.Equal(t, int64(100_000), other.AmountCents)
	assert.Empty(t, other.CappedReason)
}

func TestComputeDiscount_TotalCap(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})

	discount := rates.ComputeDiscount(2_000_000, domain.TierPremium, DiscountUsage{WithOperator: 1, Total: 20})

	assert.Equal(t, int64(0), discount.Percentage)
	assert.Equal(t, CappedTotal, discount.CappedReason)
}

func TestComputeDiscount_RoundsHalfUp(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})

	// 5% of 999 cents is 49.95, rounded half-up to 50
	discount := rates.ComputeDiscount(999, domain.TierBasic, DiscountUsage{})
	assert.Equal(t, int64(50), discount.AmountCents)

	// 5% of 990 cents is 49.5, also up to 50
	discount = rates.ComputeDiscount(990, domain.TierBasic, DiscountUsage{})
	assert.Equal(t, int64(50), discount.AmountCents)

	// 5% of 980 cents is exactly 49
	discount = rates.ComputeDiscount(980, domain.TierBasic, DiscountUsage{})
	assert.Equal(t, int64(49), discount.AmountCents)
}

func TestNewRateTable_ConfigOverrides(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{
		DiscountPercent:     map[string]int64{"BASIC": 7},
		CustomerCancelLimit: 3,
		CancellationWindows: []config.CancellationWindowConfig{
			{MaxHours: 48, PenaltyPct: 80, RefundPct: 20},
			{MaxHours: 0, PenaltyPct: 10, RefundPct: 90},
		},
	})

	assert.Equal(t, int64(7), rates.DiscountPercent(domain.TierBasic))
	assert.Equal(t, 3, rates.CustomerCancelLimit)
	assert.Equal(t, int64(80), rates.Window(24*time.Hour).PenaltyPct)
	assert.Equal(t, int64(10), rates.Window(100*time.Hour).PenaltyPct)
	// caps keep their defaults when not configured
	assert.Equal(t, 2, rates.PerOperatorDiscountCap)
	assert.Equal(t, 20, rates.TotalDiscountCap)
}

func TestRateTable_CancelLimit(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})

	assert.Equal(t, 0, rates.CancelLimit(domain.RoleCustomer, domain.TierStandard))
	assert.Equal(t, 10, rates.CancelLimit(domain.RoleCustomer, domain.TierBasic))
	assert.Equal(t, 10, rates.CancelLimit(domain.RoleCustomer, domain.TierPremium))
	assert.Equal(t, 25, rates.CancelLimit(domain.RoleOperator, ""))
}

func TestRateTable_Baggage(t *testing.T) {
	rates := NewRateTable(config.PolicyConfig{})

	light, ok := rates.Baggage(domain.AircraftLight)
	assert.True(t, ok)
	assert.Equal(t, 4, light.CheckedBags)

	_, ok = rates.Baggage("TURBOPROP")
	assert.False(t, ok)
}

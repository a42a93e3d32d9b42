package policy

import "github.com/mvolosh/jetcharter/internal/domain"

// Cap reasons reported via Discount.CappedReason.
const (
	CappedPerOperator = "per-operator"
	CappedTotal       = "total"
)

// DiscountUsage is a snapshot of how many discounted bookings a customer has
// already consumed, overall and with the operator being booked.
type DiscountUsage struct {
	WithOperator int
	Total        int
}

// ComputeDiscount resolves the membership discount for a booking. Pure: caps
// are evaluated against the supplied usage snapshot; atomically reserving the
// quota is the caller's job.
func (t RateTable) ComputeDiscount(basePriceCents int64, tier domain.MembershipTier, usage DiscountUsage) domain.Discount {
	pct := t.DiscountPercent(tier)
	if pct == 0 {
		return domain.Discount{}
	}
	if usage.WithOperator >= t.PerOperatorDiscountCap {
		return domain.Discount{CappedReason: CappedPerOperator}
	}
	if usage.Total >= t.TotalDiscountCap {
		return domain.Discount{CappedReason: CappedTotal}
	}
	return domain.Discount{
		Percentage:  pct,
		AmountCents: pctAmount(basePriceCents, pct),
	}
}

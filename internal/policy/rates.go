package policy

import (
	"time"

	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/domain"
)

// CancellationWindow is one bucket of the penalty table. Windows are ordered
// by ascending time to departure; Within 0 marks the open-ended top bucket.
type CancellationWindow struct {
	Within     time.Duration
	PenaltyPct int64
	RefundPct  int64
}

type BaggageAllowance struct {
	CheckedBags int
	CargoKg     int
}

// RateTable holds the charter-terms lookup data: membership discounts,
// cancellation windows, rights limits, discount caps and baggage allowances.
// It is loaded once at process start and never mutated afterwards.
type RateTable struct {
	discountPct map[domain.MembershipTier]int64
	windows     []CancellationWindow
	baggage     map[domain.AircraftClass]BaggageAllowance

	CustomerCancelLimit    int
	OperatorCancelLimit    int
	PerOperatorDiscountCap int
	TotalDiscountCap       int
}

func defaultWindows() []CancellationWindow {
	return []CancellationWindow{
		{Within: 24 * time.Hour, PenaltyPct: 100, RefundPct: 0},
		{Within: 48 * time.Hour, PenaltyPct: 50, RefundPct: 50},
		{Within: 72 * time.Hour, PenaltyPct: 35, RefundPct: 65},
		{Within: 0, PenaltyPct: 25, RefundPct: 75},
	}
}

func defaultDiscounts() map[domain.MembershipTier]int64 {
	return map[domain.MembershipTier]int64{
		domain.TierStandard: 0,
		domain.TierBasic:    5,
		domain.TierPremium:  10,
	}
}

func defaultBaggage() map[domain.AircraftClass]BaggageAllowance {
	return map[domain.AircraftClass]BaggageAllowance{
		domain.AircraftLight:     {CheckedBags: 4, CargoKg: 100},
		domain.AircraftMidsize:   {CheckedBags: 8, CargoKg: 250},
		domain.AircraftHeavy:     {CheckedBags: 15, CargoKg: 500},
		domain.AircraftUltraLong: {CheckedBags: 20, CargoKg: 800},
	}
}

// NewRateTable builds a RateTable from config, falling back to the published
// charter-terms defaults for any section left empty.
func NewRateTable(cfg config.PolicyConfig) RateTable {
	t := RateTable{
		discountPct:            defaultDiscounts(),
		windows:                defaultWindows(),
		baggage:                defaultBaggage(),
		CustomerCancelLimit:    10,
		OperatorCancelLimit:    25,
		PerOperatorDiscountCap: 2,
		TotalDiscountCap:       20,
	}

	if len(cfg.DiscountPercent) > 0 {
		t.discountPct = make(map[domain.MembershipTier]int64, len(cfg.DiscountPercent))
		for tier, pct := range cfg.DiscountPercent {
			t.discountPct[domain.MembershipTier(tier)] = pct
		}
	}
	if len(cfg.CancellationWindows) > 0 {
		t.windows = make([]CancellationWindow, 0, len(cfg.CancellationWindows))
		for _, w := range cfg.CancellationWindows {
			t.windows = append(t.windows, CancellationWindow{
				Within:     time.Duration(w.MaxHours) * time.Hour,
				PenaltyPct: w.PenaltyPct,
				RefundPct:  w.RefundPct,
			})
		}
	}
	if len(cfg.Baggage) > 0 {
		t.baggage = make(map[domain.AircraftClass]BaggageAllowance, len(cfg.Baggage))
		for class, b := range cfg.Baggage {
			t.baggage[domain.AircraftClass(class)] = BaggageAllowance{CheckedBags: b.CheckedBags, CargoKg: b.CargoKg}
		}
	}
	if cfg.CustomerCancelLimit > 0 {
		t.CustomerCancelLimit = cfg.CustomerCancelLimit
	}
	if cfg.OperatorCancelLimit > 0 {
		t.OperatorCancelLimit = cfg.OperatorCancelLimit
	}
	if cfg.PerOperatorDiscountCap > 0 {
		t.PerOperatorDiscountCap = cfg.PerOperatorDiscountCap
	}
	if cfg.TotalDiscountCap > 0 {
		t.TotalDiscountCap = cfg.TotalDiscountCap
	}
	return t
}

// DiscountPercent returns the membership discount for a tier, 0 for unknown tiers.
func (t RateTable) DiscountPercent(tier domain.MembershipTier) int64 {
	return t.discountPct[tier]
}

// Window returns the cancellation bucket for the given time to departure.
// The table covers every duration: anything below the first bound falls in
// the first bucket (including already-departed flights) and the last bucket
// is open-ended.
func (t RateTable) Window(timeToDeparture time.Duration) CancellationWindow {
	for _, w := range t.windows {
		if w.Within > 0 && timeToDeparture < w.Within {
			return w
		}
	}
	return t.windows[len(t.windows)-1]
}

// CancelLimit returns the number of cancellations an actor may perform before
// requiring an administrative reset. Standard-tier customers have none.
func (t RateTable) CancelLimit(role domain.ActorRole, tier domain.MembershipTier) int {
	if role == domain.RoleOperator {
		return t.OperatorCancelLimit
	}
	if tier == domain.TierStandard {
		return 0
	}
	return t.CustomerCancelLimit
}

// Baggage returns the allowance for an aircraft class.
func (t RateTable) Baggage(class domain.AircraftClass) (BaggageAllowance, bool) {
	b, ok := t.baggage[class]
	return b, ok
}

// pctAmount applies an integer percentage to an amount of cents, rounding
// half-up to the cent. Inputs are non-negative.
func pctAmount(cents, pct int64) int64 {
	return (cents*pct + 50) / 100
}

package policy

import (
	"fmt"
	"time"

	"github.com/mvolosh/jetcharter/internal/domain"
)

// CancelQuote is the financial outcome of a cancellation request. Penalty and
// refund always sum to the base price exactly.
type CancelQuote struct {
	Allowed      bool
	PenaltyPct   int64
	RefundPct    int64
	PenaltyCents int64
	RefundCents  int64
}

// ComputeCancellation evaluates the penalty table for an actor cancelling at
// now before the given departure. Standard-tier customers have no cancellation
// rights: penalty is the full base price regardless of the window. Rights
// exhaustion is enforced separately by the ledger.
//
// The refund is defined as base minus penalty, so the no-leakage invariant
// holds for every price, not just ones that divide evenly.
func (t RateTable) ComputeCancellation(basePriceCents int64, departure, now time.Time, role domain.ActorRole, tier domain.MembershipTier) CancelQuote {
	if role == domain.RoleCustomer && tier == domain.TierStandard {
		return CancelQuote{
			Allowed:      false,
			PenaltyPct:   100,
			RefundPct:    0,
			PenaltyCents: basePriceCents,
			RefundCents:  0,
		}
	}

	w := t.Window(departure.Sub(now))
	penalty := pctAmount(basePriceCents, w.PenaltyPct)
	q := CancelQuote{
		Allowed:      true,
		PenaltyPct:   w.PenaltyPct,
		RefundPct:    w.RefundPct,
		PenaltyCents: penalty,
		RefundCents:  basePriceCents - penalty,
	}
	if q.PenaltyCents+q.RefundCents != basePriceCents {
		// unreachable by construction; a failure here is a data-integrity bug
		panic(fmt.Sprintf("cancellation leaks money: %d + %d != %d", q.PenaltyCents, q.RefundCents, basePriceCents))
	}
	return q
}

package rights

import (
	"context"
	"sync"

	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/policy"
)

// Ledger tracks per-actor consumption of capped cancellation rights. Consume
// must be atomic with respect to concurrent callers for the same actor: two
// racing cancellations must never both spend the last right.
type Ledger interface {
	CanConsume(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (bool, error)
	// Consume spends one right, failing with domain.ErrRightsExhausted when
	// the actor has none left.
	Consume(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) error
	// Release undoes one Consume (compensation when a cancellation fails to
	// persist after the right was spent). Clamped at zero.
	Release(ctx context.Context, actorID string, role domain.ActorRole) error
	// Reset is the administrative operation restoring an exhausted actor.
	// Idempotent, no precondition.
	Reset(ctx context.Context, actorID string, role domain.ActorRole) error
	Remaining(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (int, error)
	// IsExhausted is surfaced so listing/publishing systems can lock out
	// operators that have burned through their quota.
	IsExhausted(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (bool, error)
}

// Limits are the per-role cancellation caps. Standard-tier customers have no
// rights at all, so their cap is zero regardless of the configured figure.
type Limits struct {
	Customer int
	Operator int
}

func (l Limits) For(role domain.ActorRole, tier domain.MembershipTier) int {
	if role == domain.RoleOperator {
		return l.Operator
	}
	if tier == domain.TierStandard {
		return 0
	}
	return l.Customer
}

// DiscountUsage tracks how many discounted bookings a customer has consumed,
// per operator and in total, under the same atomicity discipline as Ledger.
type DiscountUsage interface {
	Snapshot(ctx context.Context, customerID, operatorID string) (policy.DiscountUsage, error)
	// TryConsume reserves one discounted booking. It returns the cap that was
	// hit (policy.CappedPerOperator or policy.CappedTotal) with no counter
	// change, or "" when the reservation succeeded.
	TryConsume(ctx context.Context, customerID, operatorID string) (string, error)
	// Release undoes one TryConsume (compensation when the booking it was
	// reserved for fails to persist). Clamped at zero.
	Release(ctx context.Context, customerID, operatorID string) error
}

type entry struct {
	mu   sync.Mutex
	used int
}

// MemoryLedger is the in-process Ledger: one mutex per actor key, suitable
// for tests and single-node deployments.
type MemoryLedger struct {
	limits  Limits
	entries sync.Map // key -> *entry
}

func NewMemoryLedger(limits Limits) *MemoryLedger {
	return &MemoryLedger{limits: limits}
}

func ledgerKey(actorID string, role domain.ActorRole) string {
	return string(role) + ":" + actorID
}

func (l *MemoryLedger) entryFor(actorID string, role domain.ActorRole) *entry {
	e, _ := l.entries.LoadOrStore(ledgerKey(actorID, role), &entry{})
	return e.(*entry)
}

func (l *MemoryLedger) CanConsume(_ context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (bool, error) {
	e := l.entryFor(actorID, role)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.used < l.limits.For(role, tier), nil
}

func (l *MemoryLedger) Consume(_ context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) error {
	e := l.entryFor(actorID, role)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.used >= l.limits.For(role, tier) {
		return domain.ErrRightsExhausted
	}
	e.used++
	return nil
}

func (l *MemoryLedger) Release(_ context.Context, actorID string, role domain.ActorRole) error {
	e := l.entryFor(actorID, role)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.used > 0 {
		e.used--
	}
	return nil
}

func (l *MemoryLedger) Reset(_ context.Context, actorID string, role domain.ActorRole) error {
	e := l.entryFor(actorID, role)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.used = 0
	return nil
}

func (l *MemoryLedger) Remaining(_ context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (int, error) {
	e := l.entryFor(actorID, role)
	e.mu.Lock()
	defer e.mu.Unlock()
	remaining := l.limits.For(role, tier) - e.used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (l *MemoryLedger) IsExhausted(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (bool, error) {
	ok, err := l.CanConsume(ctx, actorID, role, tier)
	return !ok, err
}

var _ Ledger = (*MemoryLedger)(nil)

type usageEntry struct {
	mu          sync.Mutex
	total       int
	perOperator map[string]int
}

// MemoryDiscountUsage is the in-process DiscountUsage, keyed by customer.
type MemoryDiscountUsage struct {
	perOperatorCap int
	totalCap       int
	customers      sync.Map // customerID -> *usageEntry
}

func NewMemoryDiscountUsage(perOperatorCap, totalCap int) *MemoryDiscountUsage {
	return &MemoryDiscountUsage{perOperatorCap: perOperatorCap, totalCap: totalCap}
}

func (u *MemoryDiscountUsage) entryFor(customerID string) *usageEntry {
	e, _ := u.customers.LoadOrStore(customerID, &usageEntry{perOperator: map[string]int{}})
	return e.(*usageEntry)
}

func (u *MemoryDiscountUsage) Snapshot(_ context.Context, customerID, operatorID string) (policy.DiscountUsage, error) {
	e := u.entryFor(customerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return policy.DiscountUsage{WithOperator: e.perOperator[operatorID], Total: e.total}, nil
}

func (u *MemoryDiscountUsage) TryConsume(_ context.Context, customerID, operatorID string) (string, error) {
	e := u.entryFor(customerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.perOperator[operatorID] >= u.perOperatorCap {
		return policy.CappedPerOperator, nil
	}
	if e.total >= u.totalCap {
		return policy.CappedTotal, nil
	}
	e.perOperator[operatorID]++
	e.total++
	return "", nil
}

func (u *MemoryDiscountUsage) Release(_ context.Context, customerID, operatorID string) error {
	e := u.entryFor(customerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.perOperator[operatorID] > 0 {
		e.perOperator[operatorID]--
	}
	if e.total > 0 {
		e.total--
	}
	return nil
}

var _ DiscountUsage = (*MemoryDiscountUsage)(nil)

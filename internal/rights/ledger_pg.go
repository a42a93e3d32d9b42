package rights

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/policy"
)

// PGLedger stores rights counters in postgres. Consume is a single
// conditional UPDATE, so concurrent spenders serialize on the row and can
// never push used past the cap.
type PGLedger struct {
	db     *pgxpool.Pool
	limits Limits
}

func NewPGLedger(db *pgxpool.Pool, limits Limits) *PGLedger {
	return &PGLedger{db: db, limits: limits}
}

func (l *PGLedger) seed(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) error {
	_, err := l.db.Exec(ctx, `INSERT INTO rights_ledger (actor_id, role, used, cap)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (actor_id, role) DO NOTHING`, actorID, role, l.limits.For(role, tier))
	return err
}

func (l *PGLedger) CanConsume(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (bool, error) {
	// a zero cap never seeds a row
	if l.limits.For(role, tier) == 0 {
		return false, nil
	}
	var used, cap int
	err := l.db.QueryRow(ctx, `SELECT used, cap FROM rights_ledger WHERE actor_id=$1 AND role=$2`, actorID, role).Scan(&used, &cap)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return used < cap, nil
}

func (l *PGLedger) Consume(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) error {
	if l.limits.For(role, tier) == 0 {
		return domain.ErrRightsExhausted
	}
	if err := l.seed(ctx, actorID, role, tier); err != nil {
		return err
	}
	cmd, err := l.db.Exec(ctx, `UPDATE rights_ledger SET used = used + 1, updated_at = now()
		WHERE actor_id=$1 AND role=$2 AND used < cap`, actorID, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRightsExhausted
	}
	return nil
}

func (l *PGLedger) Release(ctx context.Context, actorID string, role domain.ActorRole) error {
	_, err := l.db.Exec(ctx, `UPDATE rights_ledger SET used = GREATEST(used - 1, 0), updated_at = now()
		WHERE actor_id=$1 AND role=$2`, actorID, role)
	return err
}

func (l *PGLedger) Reset(ctx context.Context, actorID string, role domain.ActorRole) error {
	_, err := l.db.Exec(ctx, `UPDATE rights_ledger SET used = 0, updated_at = now()
		WHERE actor_id=$1 AND role=$2`, actorID, role)
	return err
}

func (l *PGLedger) Remaining(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (int, error) {
	cap := l.limits.For(role, tier)
	if cap == 0 {
		return 0, nil
	}
	var used int
	err := l.db.QueryRow(ctx, `SELECT used FROM rights_ledger WHERE actor_id=$1 AND role=$2`, actorID, role).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return cap, nil
	}
	if err != nil {
		return 0, err
	}
	if used > cap {
		return 0, nil
	}
	return cap - used, nil
}

func (l *PGLedger) IsExhausted(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (bool, error) {
	ok, err := l.CanConsume(ctx, actorID, role, tier)
	return !ok, err
}

var _ Ledger = (*PGLedger)(nil)

// PGDiscountUsage stores the discount quota counters in postgres. Both caps
// are checked and reserved in one transaction so a concurrent pair of
// bookings cannot overrun either cap.
type PGDiscountUsage struct {
	db             *pgxpool.Pool
	perOperatorCap int
	totalCap       int
}

func NewPGDiscountUsage(db *pgxpool.Pool, perOperatorCap, totalCap int) *PGDiscountUsage {
	return &PGDiscountUsage{db: db, perOperatorCap: perOperatorCap, totalCap: totalCap}
}

func (u *PGDiscountUsage) Snapshot(ctx context.Context, customerID, operatorID string) (policy.DiscountUsage, error) {
	var snap policy.DiscountUsage
	err := u.db.QueryRow(ctx, `SELECT used FROM discount_usage_operator WHERE customer_id=$1 AND operator_id=$2`, customerID, operatorID).Scan(&snap.WithOperator)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return policy.DiscountUsage{}, err
	}
	err = u.db.QueryRow(ctx, `SELECT used FROM discount_usage_total WHERE customer_id=$1`, customerID).Scan(&snap.Total)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return policy.DiscountUsage{}, err
	}
	return snap, nil
}

func (u *PGDiscountUsage) TryConsume(ctx context.Context, customerID, operatorID string) (string, error) {
	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO discount_usage_operator (customer_id, operator_id, used)
		VALUES ($1, $2, 0) ON CONFLICT (customer_id, operator_id) DO NOTHING`, customerID, operatorID); err != nil {
		return "", err
	}
	cmd, err := tx.Exec(ctx, `UPDATE discount_usage_operator SET used = used + 1
		WHERE customer_id=$1 AND operator_id=$2 AND used < $3`, customerID, operatorID, u.perOperatorCap)
	if err != nil {
		return "", err
	}
	if cmd.RowsAffected() == 0 {
		return policy.CappedPerOperator, nil
	}

	if _, err := tx.Exec(ctx, `INSERT INTO discount_usage_total (customer_id, used)
		VALUES ($1, 0) ON CONFLICT (customer_id) DO NOTHING`, customerID); err != nil {
		return "", err
	}
	cmd, err = tx.Exec(ctx, `UPDATE discount_usage_total SET used = used + 1
		WHERE customer_id=$1 AND used < $2`, customerID, u.totalCap)
	if err != nil {
		return "", err
	}
	if cmd.RowsAffected() == 0 {
		// rollback drops the per-operator increment as well
		return policy.CappedTotal, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return "", nil
}

func (u *PGDiscountUsage) Release(ctx context.Context, customerID, operatorID string) error {
	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE discount_usage_operator SET used = GREATEST(used - 1, 0)
		WHERE customer_id=$1 AND operator_id=$2`, customerID, operatorID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE discount_usage_total SET used = GREATEST(used - 1, 0)
		WHERE customer_id=$1`, customerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ DiscountUsage = (*PGDiscountUsage)(nil)

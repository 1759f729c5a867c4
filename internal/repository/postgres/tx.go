package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/baharkarakas/points-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitOfWork struct{ pool *pgxpool.Pool }

// WithTx runs fn in one read-committed transaction. Rows are serialized
// with SELECT ... FOR UPDATE rather than by the isolation level, so
// concurrent confirms block instead of failing with serialization errors.
func (u *unitOfWork) WithTx(ctx context.Context, fn func(repository.TxStore) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("WithTx: begin: %w", err)
	}
	if err := fn(&pgTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("WithTx: commit: %w", err)
	}
	return nil
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) LockTransfer(ctx context.Context, id string) (models.Transfer, error) {
	if err := validID("LockTransfer", id); err != nil {
		return models.Transfer{}, err
	}
	tr, err := scanTransfer(t.tx.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return models.Transfer{}, wrapNoRows("LockTransfer", err)
	}
	return tr, nil
}

func (t *pgTx) MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`UPDATE transfers
		    SET status='confirmed', confirmed_at=$2
		  WHERE id=$1 AND status='pending'`,
		id, at,
	)
	if err != nil {
		return false, fmt.Errorf("MarkConfirmed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) LockAccount(ctx context.Context, userID string) (models.Account, error) {
	a, err := scanAccount(t.tx.QueryRow(ctx,
		`SELECT `+accountColumns+`
		   FROM balances b
		   JOIN users u ON u.id = b.user_id
		  WHERE b.user_id=$1
		    FOR UPDATE OF b`,
		userID,
	))
	if err != nil {
		return models.Account{}, wrapNoRows("LockAccount", err)
	}
	return a, nil
}

func (t *pgTx) AdjustPoints(ctx context.Context, userID string, delta int64) (models.Account, error) {
	a, err := scanAccount(t.tx.QueryRow(ctx,
		`UPDATE balances b
		    SET points = b.points + $2,
		        last_updated_at = now()
		   FROM users u
		  WHERE b.user_id = $1 AND u.id = b.user_id
		  RETURNING `+accountColumns,
		userID, delta,
	))
	if err != nil {
		return models.Account{}, wrapNoRows("AdjustPoints", err)
	}
	return a, nil
}

package postgres

import (
	"context"

	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type balancesRepo struct{ pool *pgxpool.Pool }

const accountColumns = `b.user_id, u.email, b.points, b.last_updated_at`

func (r *balancesRepo) GetAccount(ctx context.Context, userID string) (models.Account, error) {
	if err := validID("GetAccount", userID); err != nil {
		return models.Account{}, err
	}
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+`
		   FROM balances b
		   JOIN users u ON u.id = b.user_id
		  WHERE b.user_id=$1`,
		userID,
	))
	if err != nil {
		return models.Account{}, wrapNoRows("GetAccount", err)
	}
	return a, nil
}

func (r *balancesRepo) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+`
		   FROM balances b
		   JOIN users u ON u.id = b.user_id
		  WHERE u.email=$1`,
		models.NormalizeEmail(email),
	))
	if err != nil {
		return models.Account{}, wrapNoRows("GetAccountByEmail", err)
	}
	return a, nil
}

func scanAccount(s scanner) (models.Account, error) {
	var a models.Account
	err := s.Scan(&a.UserID, &a.Email, &a.Points, &a.UpdatedAt)
	return a, err
}

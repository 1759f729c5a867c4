package postgres

import (
	"context"
	"fmt"

	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transfersRepo struct{ pool *pgxpool.Pool }

const transferColumns = `id, sender_id, receiver_id, points, status, created_at, expires_at, confirmed_at`

// sortable columns; anything else is rejected before it reaches SQL.
var orderColumns = map[string]bool{
	"created_at": true, "expires_at": true, "points": true, "status": true, "id": true,
}

func (r *transfersRepo) Create(ctx context.Context, t models.Transfer) (models.Transfer, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO transfers (id, sender_id, receiver_id, points, status, created_at, expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+transferColumns,
		t.ID, t.SenderID, t.ReceiverID, t.Points, t.Status.String(), t.CreatedAt, t.ExpiresAt,
	)
	out, err := scanTransfer(row)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("Create: %w", err)
	}
	return out, nil
}

func (r *transfersRepo) GetByID(ctx context.Context, id string) (models.Transfer, error) {
	if err := validID("GetByID", id); err != nil {
		return models.Transfer{}, err
	}
	t, err := scanTransfer(r.pool.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id=$1`, id))
	if err != nil {
		return models.Transfer{}, wrapNoRows("GetByID", err)
	}
	return t, nil
}

func (r *transfersRepo) ListByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.Transfer, int, error) {
	if err := validID("ListByUser", userID); err != nil {
		return nil, 0, nil
	}
	column := q.SortBy
	if column == "" {
		column = "created_at"
	}
	if !orderColumns[column] {
		return nil, 0, fmt.Errorf("ListByUser: unsupported sort column %q", column)
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM transfers WHERE sender_id=$1 OR receiver_id=$1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListByUser: count: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+`
		   FROM transfers
		  WHERE sender_id=$1 OR receiver_id=$1
		  ORDER BY `+column+` `+dir+`, id ASC
		  LIMIT $2 OFFSET $3`,
		userID, q.Limit, q.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	var out []models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListByUser: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListByUser: rows: %w", err)
	}
	return out, total, nil
}

func scanTransfer(s scanner) (models.Transfer, error) {
	var (
		t      models.Transfer
		status string
	)
	if err := s.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Points, &status, &t.CreatedAt, &t.ExpiresAt, &t.ConfirmedAt); err != nil {
		return models.Transfer{}, err
	}
	st, err := models.ParseTransferStatus(status)
	if err != nil {
		return models.Transfer{}, err
	}
	t.Status = st
	return t, nil
}

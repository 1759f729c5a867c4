package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role, b.points, u.created_at, u.updated_at`

// Create inserts the user and its opening balance together.
func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = models.NormalizeEmail(u.Email)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users(id, name, email, password_hash, role) VALUES($1,$2,$3,$4,$5)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO balances(user_id, points) VALUES($1,$2)`, u.ID, u.Points)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, fmt.Errorf("Create: %w", models.ErrEmailTaken)
		}
		return models.User{}, fmt.Errorf("Create: %w", err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	if err := validID("GetByID", id); err != nil {
		return models.User{}, err
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u JOIN balances b ON b.user_id = u.id WHERE u.id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, wrapNoRows("GetByID", err)
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u JOIN balances b ON b.user_id = u.id WHERE u.email=$1`,
		models.NormalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, wrapNoRows("GetByEmail", err)
	}
	return u, nil
}

func scanUser(s scanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Points, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

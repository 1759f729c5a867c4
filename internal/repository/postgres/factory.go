package postgres

import (
	"errors"
	"fmt"

	"github.com/baharkarakas/points-backend/internal/models"
	repo "github.com/baharkarakas/points-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:     &usersRepo{pool},
		Accounts:  &balancesRepo{pool},
		Transfers: &transfersRepo{pool},
		UoW:       &unitOfWork{pool},
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// validID rejects ids Postgres would refuse to cast to uuid; such ids can
// never match a row.
func validID(op, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

func wrapNoRows(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

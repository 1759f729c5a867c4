package repository

import (
	"context"
	"time"

	"github.com/baharkarakas/points-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// Accounts is the read side of the account store. Balance writes only
// happen through TxStore inside a unit of work.
type Accounts interface {
	GetAccount(ctx context.Context, userID string) (models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
}

type Transfers interface {
	Create(ctx context.Context, t models.Transfer) (models.Transfer, error)
	GetByID(ctx context.Context, id string) (models.Transfer, error)
	ListByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.Transfer, int, error)
}

// TxStore is scoped to one unit of work; nothing it writes is visible to
// other readers until the unit commits.
type TxStore interface {
	// LockTransfer loads a transfer and holds it until the unit ends.
	LockTransfer(ctx context.Context, id string) (models.Transfer, error)
	// MarkConfirmed flips Pending -> Confirmed. It reports false when the
	// transfer was no longer pending.
	MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error)
	// LockAccount loads an account and holds it until the unit ends.
	LockAccount(ctx context.Context, userID string) (models.Account, error)
	// AdjustPoints adds delta to the account balance and returns the result.
	AdjustPoints(ctx context.Context, userID string, delta int64) (models.Account, error)
}

// UnitOfWork runs fn atomically: all TxStore writes commit together or
// none do. A non-nil error from fn rolls back.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(TxStore) error) error
}

type Repositories struct {
	Users     Users
	Accounts  Accounts
	Transfers Transfers
	UoW       UnitOfWork
}

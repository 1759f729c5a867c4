// Package memory is an in-process implementation of the repository
// interfaces. A unit of work holds the store's write lock for its whole
// duration and undoes its writes when it fails.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/baharkarakas/points-backend/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	users     map[string]models.User
	byEmail   map[string]string
	transfers map[string]models.Transfer
	now       func() time.Time
}

type usersRepo struct{ *Store }
type transfersRepo struct{ *Store }

var (
	_ repository.Users      = usersRepo{}
	_ repository.Transfers  = transfersRepo{}
	_ repository.Accounts   = (*Store)(nil)
	_ repository.UnitOfWork = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:     map[string]models.User{},
		byEmail:   map[string]string{},
		transfers: map[string]models.Transfer{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:     usersRepo{s},
		Accounts:  s,
		Transfers: transfersRepo{s},
		UoW:       s,
	}
}

// ----------------- Users -----------------

func (r usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	s := r.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return models.User{}, fmt.Errorf("Create: %w", models.ErrEmailTaken)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u, nil
}

func (r usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.getUser(id)
}

func (s *Store) getUser(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("getUser: %w", models.ErrNotFound)
	}
	return u, nil
}

func (r usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getUserByEmail(email)
}

func (s *Store) getUserByEmail(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return models.User{}, fmt.Errorf("getUserByEmail: %w", models.ErrNotFound)
	}
	return s.users[id], nil
}

// ----------------- Accounts -----------------

func (s *Store) GetAccount(ctx context.Context, userID string) (models.Account, error) {
	u, err := s.getUser(userID)
	if err != nil {
		return models.Account{}, fmt.Errorf("GetAccount: %w", err)
	}
	return u.Account(), nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	u, err := s.getUserByEmail(email)
	if err != nil {
		return models.Account{}, fmt.Errorf("GetAccountByEmail: %w", err)
	}
	return u.Account(), nil
}

// ----------------- Transfers -----------------

func (r transfersRepo) Create(ctx context.Context, t models.Transfer) (models.Transfer, error) {
	s := r.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[t.SenderID]; !ok {
		return models.Transfer{}, fmt.Errorf("Create: sender: %w", models.ErrNotFound)
	}
	if _, ok := s.users[t.ReceiverID]; !ok {
		return models.Transfer{}, fmt.Errorf("Create: receiver: %w", models.ErrNotFound)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.transfers[t.ID] = t
	return t, nil
}

func (r transfersRepo) GetByID(ctx context.Context, id string) (models.Transfer, error) {
	s := r.Store
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transfers[id]
	if !ok {
		return models.Transfer{}, fmt.Errorf("GetByID: %w", models.ErrNotFound)
	}
	return t, nil
}

func (r transfersRepo) ListByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.Transfer, int, error) {
	s := r.Store
	s.mu.RLock()
	var all []models.Transfer
	for _, t := range s.transfers {
		if t.Involves(userID) {
			all = append(all, t)
		}
	}
	s.mu.RUnlock()

	less, err := lessFor(q.SortBy)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByUser: %w", err)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if q.Desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	start := max(0, min(q.Offset(), total))
	end := min(start+q.Limit, total)
	return all[start:end], total, nil
}

func lessFor(column string) (func(a, b models.Transfer) bool, error) {
	switch column {
	case "", "created_at":
		return func(a, b models.Transfer) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case "expires_at":
		return func(a, b models.Transfer) bool { return a.ExpiresAt.Before(b.ExpiresAt) }, nil
	case "points":
		return func(a, b models.Transfer) bool { return a.Points < b.Points }, nil
	case "status":
		return func(a, b models.Transfer) bool { return a.Status.String() < b.Status.String() }, nil
	case "id":
		return func(a, b models.Transfer) bool { return a.ID < b.ID }, nil
	}
	return nil, fmt.Errorf("unsupported sort column %q", column)
}

// ----------------- Unit of work -----------------

func (s *Store) WithTx(ctx context.Context, fn func(repository.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s, users: map[string]models.User{}, transfers: map[string]models.Transfer{}}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memTx records the original value of every row it touches so rollback
// can restore them.
type memTx struct {
	s         *Store
	users     map[string]models.User
	transfers map[string]models.Transfer
}

func (tx *memTx) rollback() {
	for id, u := range tx.users {
		tx.s.users[id] = u
	}
	for id, t := range tx.transfers {
		tx.s.transfers[id] = t
	}
}

func (tx *memTx) LockTransfer(ctx context.Context, id string) (models.Transfer, error) {
	t, ok := tx.s.transfers[id]
	if !ok {
		return models.Transfer{}, fmt.Errorf("LockTransfer: %w", models.ErrNotFound)
	}
	return t, nil
}

func (tx *memTx) MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error) {
	t, ok := tx.s.transfers[id]
	if !ok {
		return false, fmt.Errorf("MarkConfirmed: %w", models.ErrNotFound)
	}
	if t.Status != models.TransferPending {
		return false, nil
	}
	if _, seen := tx.transfers[id]; !seen {
		tx.transfers[id] = t
	}
	t.Status = models.TransferConfirmed
	t.ConfirmedAt = &at
	tx.s.transfers[id] = t
	return true, nil
}

func (tx *memTx) LockAccount(ctx context.Context, userID string) (models.Account, error) {
	u, ok := tx.s.users[userID]
	if !ok {
		return models.Account{}, fmt.Errorf("LockAccount: %w", models.ErrNotFound)
	}
	return u.Account(), nil
}

func (tx *memTx) AdjustPoints(ctx context.Context, userID string, delta int64) (models.Account, error) {
	u, ok := tx.s.users[userID]
	if !ok {
		return models.Account{}, fmt.Errorf("AdjustPoints: %w", models.ErrNotFound)
	}
	if _, seen := tx.users[userID]; !seen {
		tx.users[userID] = u
	}
	u.Points += delta
	u.UpdatedAt = tx.s.now()
	tx.s.users[userID] = u
	return u.Account(), nil
}

// Delete removes a user. Only tests use it, to simulate a receiver that
// disappears between create and confirm.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.users, id)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/baharkarakas/points-backend/internal/logger"
	"github.com/baharkarakas/points-backend/internal/metrics"
	"github.com/baharkarakas/points-backend/internal/models"
	repo "github.com/baharkarakas/points-backend/internal/repository"
)

var errInvalidTransfer = models.NewError(models.ErrInvalidOperation, "invalid or already confirmed transfer")

type TransferOptions struct {
	Window time.Duration
	// RecheckOnConfirm fails a confirm with InsufficientFunds when the
	// sender's balance no longer covers the transfer. When false the
	// sender's balance may go negative.
	RecheckOnConfirm bool
	Now              func() time.Time
}

type TransferService struct {
	accounts  repo.Accounts
	transfers repo.Transfers
	uow       repo.UnitOfWork
	locker    Locker
	policy    AccessPolicy
	window    time.Duration
	recheck   bool
	now       func() time.Time
}

func NewTransferService(repos repo.Repositories, locker Locker, opts TransferOptions) *TransferService {
	if opts.Window <= 0 {
		opts.Window = models.DefaultTransferWindow
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &TransferService{
		accounts:  repos.Accounts,
		transfers: repos.Transfers,
		uow:       repos.UoW,
		locker:    locker,
		window:    opts.Window,
		recheck:   opts.RecheckOnConfirm,
		now:       opts.Now,
	}
}

// ----------------- Create -----------------

// Create records a pending transfer. Balances are not touched and the
// points are not held: the sender's balance is only checked here, so it can
// change again before Confirm.
func (s *TransferService) Create(ctx context.Context, senderID, receiverEmail string, points int64) (models.Transfer, error) {
	t, err := s.create(ctx, senderID, receiverEmail, points)
	if err != nil {
		observeFailure("create", err)
		return models.Transfer{}, err
	}
	metrics.TransfersTotal.WithLabelValues("created").Inc()
	logger.FromContext(ctx).Info("transfer created",
		"transfer_id", t.ID,
		"sender_id", t.SenderID,
		"receiver_id", t.ReceiverID,
		"points", t.Points,
		"expires_at", t.ExpiresAt,
	)
	return t, nil
}

func (s *TransferService) create(ctx context.Context, senderID, receiverEmail string, points int64) (models.Transfer, error) {
	if points < 1 {
		return models.Transfer{}, models.NewError(models.ErrInvalidOperation, "points must be a positive integer")
	}
	sender, err := s.accounts.GetAccount(ctx, senderID)
	if err != nil {
		return models.Transfer{}, notFoundAs(err, "sender not found")
	}
	receiver, err := s.accounts.GetAccountByEmail(ctx, receiverEmail)
	if err != nil {
		return models.Transfer{}, notFoundAs(err, "receiver not found")
	}
	if receiver.UserID == sender.UserID {
		return models.Transfer{}, models.NewError(models.ErrInvalidOperation, "cannot transfer to yourself")
	}
	if sender.Points < points {
		return models.Transfer{}, models.NewError(models.ErrInsufficientFunds, "insufficient points")
	}

	t := models.NewPendingTransfer(sender.UserID, receiver.UserID, points, s.now(), s.window)
	t, err = s.transfers.Create(ctx, t)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}
	return t, nil
}

// ----------------- Confirm -----------------

// Confirm applies a pending transfer: status, sender debit and receiver
// credit commit together or not at all.
func (s *TransferService) Confirm(ctx context.Context, transferID, actorID string) (models.Transfer, error) {
	var out models.Transfer
	err := s.locker.WithLock(ctx, "transfer:confirm:"+transferID, func(ctx context.Context) error {
		return s.uow.WithTx(ctx, func(tx repo.TxStore) error {
			t, err := s.confirm(ctx, tx, transferID, actorID)
			out = t
			return err
		})
	})
	if err != nil {
		observeFailure("confirm", err)
		return models.Transfer{}, err
	}

	metrics.TransfersTotal.WithLabelValues("confirmed").Inc()
	metrics.PointsTransferred.Add(float64(out.Points))
	logger.FromContext(ctx).Info("transfer confirmed",
		"transfer_id", out.ID,
		"sender_id", out.SenderID,
		"receiver_id", out.ReceiverID,
		"points", out.Points,
	)
	return out, nil
}

func (s *TransferService) confirm(ctx context.Context, tx repo.TxStore, transferID, actorID string) (models.Transfer, error) {
	t, err := tx.LockTransfer(ctx, transferID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Transfer{}, errInvalidTransfer
		}
		return models.Transfer{}, fmt.Errorf("lock transfer: %w", err)
	}

	now := s.now()
	confirmed := t
	if err := confirmed.Confirm(now); err != nil {
		return models.Transfer{}, err
	}
	if err := s.policy.CanConfirm(actorID, t); err != nil {
		return models.Transfer{}, err
	}

	ok, err := tx.MarkConfirmed(ctx, t.ID, now)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("mark confirmed: %w", err)
	}
	if !ok {
		return models.Transfer{}, errInvalidTransfer
	}

	sender, err := lockAccounts(ctx, tx, t)
	if err != nil {
		return models.Transfer{}, err
	}
	if s.recheck && sender.Points < t.Points {
		return models.Transfer{}, models.NewError(models.ErrInsufficientFunds, "insufficient points")
	}

	if _, err := tx.AdjustPoints(ctx, t.SenderID, -t.Points); err != nil {
		return models.Transfer{}, notFoundAs(err, "sender not found")
	}
	if _, err := tx.AdjustPoints(ctx, t.ReceiverID, t.Points); err != nil {
		return models.Transfer{}, notFoundAs(err, "receiver not found")
	}
	return confirmed, nil
}

// lockAccounts locks both parties in id order so confirms touching the same
// pair of accounts from opposite directions cannot deadlock. It returns the
// sender's account as read under the lock.
func lockAccounts(ctx context.Context, tx repo.TxStore, t models.Transfer) (models.Account, error) {
	parties := []struct{ id, role string }{
		{t.SenderID, "sender"},
		{t.ReceiverID, "receiver"},
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].id < parties[j].id })

	var sender models.Account
	for _, p := range parties {
		a, err := tx.LockAccount(ctx, p.id)
		if err != nil {
			return models.Account{}, notFoundAs(err, p.role+" not found")
		}
		if p.role == "sender" {
			sender = a
		}
	}
	return sender, nil
}

// ----------------- Queries -----------------

func (s *TransferService) GetByID(ctx context.Context, transferID, actorID string) (models.Transfer, error) {
	t, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		return models.Transfer{}, notFoundAs(err, "transfer not found")
	}
	if err := s.policy.CanView(actorID, t); err != nil {
		return models.Transfer{}, err
	}
	return t, nil
}

// ListForUser pages through transfers where userID is sender or receiver.
func (s *TransferService) ListForUser(ctx context.Context, userID string, q models.ListQuery) (models.Page[models.Transfer], error) {
	if q.Page < 1 {
		q.Page = models.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = models.DefaultLimit
	}
	q.Limit = min(q.Limit, models.MaxLimit)
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}

	items, total, err := s.transfers.ListByUser(ctx, userID, q)
	if err != nil {
		return models.Page[models.Transfer]{}, fmt.Errorf("list transfers: %w", err)
	}
	return models.NewPage(items, total, q), nil
}

// ----------------- Helpers -----------------

// notFoundAs replaces a bare repository not-found with a caller-facing
// message; other errors pass through.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NewError(models.ErrNotFound, msg)
	}
	return err
}

func observeFailure(op string, err error) {
	kind := "internal"
	if k := models.KindOf(err); k != nil {
		kind = k.Error()
	}
	metrics.TransferFailures.WithLabelValues(op, kind).Inc()
}

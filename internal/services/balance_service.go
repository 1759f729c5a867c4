package services

import (
	"context"

	"github.com/baharkarakas/points-backend/internal/models"
	repo "github.com/baharkarakas/points-backend/internal/repository"
)

type BalanceService struct{ r repo.Accounts }

func NewBalanceService(r repo.Accounts) *BalanceService { return &BalanceService{r: r} }

func (s *BalanceService) Current(ctx context.Context, userID string) (models.Account, error) {
	a, err := s.r.GetAccount(ctx, userID)
	if err != nil {
		return models.Account{}, notFoundAs(err, "account not found")
	}
	return a, nil
}

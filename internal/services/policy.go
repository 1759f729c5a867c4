package services

import "github.com/baharkarakas/points-backend/internal/models"

// AccessPolicy decides who may act on a transfer.
type AccessPolicy struct{}

// CanConfirm allows only the sender; receivers cannot pull incoming transfers.
func (AccessPolicy) CanConfirm(actorID string, t models.Transfer) error {
	if actorID != t.SenderID {
		return models.NewError(models.ErrUnauthorized, "you are not the sender")
	}
	return nil
}

func (AccessPolicy) CanView(actorID string, t models.Transfer) error {
	if !t.Involves(actorID) {
		return models.NewError(models.ErrUnauthorized, "you do not have permission to view this transfer")
	}
	return nil
}

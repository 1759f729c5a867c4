package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTransferWindow is how long a pending transfer stays confirmable.
const DefaultTransferWindow = 10 * time.Minute

type TransferStatus uint8

const (
	TransferPending TransferStatus = iota + 1
	TransferConfirmed
)

func (s TransferStatus) String() string {
	switch s {
	case TransferPending:
		return "pending"
	case TransferConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("TransferStatus(%d)", uint8(s))
	}
}

func ParseTransferStatus(s string) (TransferStatus, error) {
	switch s {
	case "pending":
		return TransferPending, nil
	case "confirmed":
		return TransferConfirmed, nil
	}
	return 0, fmt.Errorf("unknown transfer status %q", s)
}

func (s TransferStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TransferStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseTransferStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Transfer struct {
	ID          string         `json:"id"`
	SenderID    string         `json:"sender_id"`
	ReceiverID  string         `json:"receiver_id"`
	Points      int64          `json:"points"`
	Status      TransferStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`
}

func NewPendingTransfer(senderID, receiverID string, points int64, now time.Time, window time.Duration) Transfer {
	return Transfer{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Points:     points,
		Status:     TransferPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(window),
	}
}

func (t Transfer) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// Involves reports whether userID is the sender or the receiver.
func (t Transfer) Involves(userID string) bool {
	return userID == t.SenderID || userID == t.ReceiverID
}

// Confirm is the only status transition: Pending -> Confirmed, before expiry.
func (t *Transfer) Confirm(now time.Time) error {
	if t.Status != TransferPending {
		return NewError(ErrInvalidOperation, "invalid or already confirmed transfer")
	}
	if t.Expired(now) {
		return NewError(ErrExpired, "transfer has expired")
	}
	t.Status = TransferConfirmed
	t.ConfirmedAt = &now
	return nil
}

package models

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Points       int64     `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Account is the balance view of a user used by the transfer workflow.
type Account struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Points    int64     `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) Account() Account {
	return Account{UserID: u.ID, Email: u.Email, Points: u.Points, UpdatedAt: u.UpdatedAt}
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Validate() error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	if u.Name == "" {
		return errors.New("name is required")
	}
	if at := strings.Index(u.Email, "@"); at < 1 || at == len(u.Email)-1 {
		return errors.New("invalid email")
	}
	if u.Role == "" {
		u.Role = "user"
	}
	return nil
}

func ValidatePassword(p string) error {
	if len(p) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return errors.New("password must contain at least one letter and one number")
	}
	return nil
}

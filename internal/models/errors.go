package models

import "errors"

// Error kinds. Every workflow error wraps exactly one of them.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrExpired           = errors.New("expired")
	ErrUnauthorized      = errors.New("unauthorized")
)

var ErrEmailTaken = errors.New("email already taken")

// Error carries a kind plus the message shown to callers.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf reports which of the error kinds err belongs to, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvalidOperation, ErrInsufficientFunds, ErrExpired, ErrUnauthorized} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleReseller = "reseller"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountExists = errors.New("account already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrForbidden = errors.New("access forbidden")
var ErrNegativeAmount = errors.New("amount must not be negative")
var ErrInsufficientBalance = errors.New("insufficient balance")

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleReseller
}

// Account models a storefront user: an admin or a reseller buying keys.
// Balance is a currency amount and must never be negative after any
// committed operation. Orders is append-only, insertion order is
// chronological.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Balance      float64   `json:"balance"`
	Orders       []Order   `json:"orders"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanAfford reports whether the account balance covers cost.
func (a *Account) CanAfford(cost float64) bool {
	return a.Balance >= cost
}

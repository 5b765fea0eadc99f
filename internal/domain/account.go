package domain

import "time"

// Account is the identity of a caller. Accounts are owned by the external
// identity service and are read-only here.
type Account struct {
	ID         int64
	Name       string
	Email      string
	Root       bool
	CustomerID int64
	CreatedAt  time.Time
}

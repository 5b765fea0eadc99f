package domain

// Admin marks an account as deployment administrator. One row per
// privileged account; managed out-of-band and read-only here.
type Admin struct {
	ID        int64
	AccountID int64
}

// CustomerAdmin delegates administration of a customer to an admin account.
// Rows are only meaningful for accounts that also hold an Admin row.
type CustomerAdmin struct {
	ID         int64
	AccountID  int64
	CustomerID int64
}

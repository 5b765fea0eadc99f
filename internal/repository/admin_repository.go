package repository

import (
	"context"
)

// AdminRepository reads the admin registry. Admin and customer-admin rows
// are managed out-of-band and read-only from this service's perspective.
type AdminRepository interface {
	IsAdmin(ctx context.Context, accountID int64) (bool, error)
	AdministeredCustomerIDs(ctx context.Context, accountID int64) ([]int64, error)
}

type adminRepository struct {
	db DB
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(db DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) IsAdmin(ctx context.Context, accountID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admins WHERE account_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// AdministeredCustomerIDs lists delegated customers. The join against the
// admins table drops customer_admin rows of accounts that lost their admin
// status without cleanup.
func (r *adminRepository) AdministeredCustomerIDs(ctx context.Context, accountID int64) ([]int64, error) {
	const query = `
        SELECT ca.customer_id
        FROM customer_admins ca
        JOIN admins a ON a.account_id = ca.account_id
        WHERE ca.account_id = $1
        ORDER BY ca.customer_id`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package repository

import (
	"context"

	"github.com/fieldops/deployment-service/internal/domain"
)

// AccountRepository reads accounts synced from the identity service.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

type accountRepository struct {
	db DB
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, root, customer_id, created_at
        FROM accounts WHERE id=$1`

	var account domain.Account
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Root,
		&account.CustomerID,
		&account.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/domain"
)

// CustomerRepository reads customers. Customers are managed by the external
// master data service.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context, scope authz.Scope) ([]domain.Customer, error)
}

type customerRepository struct {
	db DB
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(db DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `SELECT id, company, abbreviation FROM customers WHERE id=$1`

	var customer domain.Customer
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Company,
		&customer.Abbreviation,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, scope authz.Scope) ([]domain.Customer, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.All {
		rows, err = r.db.Query(ctx, `SELECT id, company, abbreviation FROM customers ORDER BY id`)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, company, abbreviation FROM customers WHERE id = ANY($1) ORDER BY id`,
			scope.CustomerIDs)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Company, &customer.Abbreviation); err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

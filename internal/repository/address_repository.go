package repository

import (
	"context"

	"github.com/fieldops/deployment-service/internal/domain"
)

// AddressRepository persists addresses. Addresses are content-addressed:
// adding an existing (street, house number, ZIP, city) tuple returns the
// stored row instead of duplicating it.
type AddressRepository interface {
	AddOrGet(ctx context.Context, address *domain.Address) error
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
}

type addressRepository struct {
	db DB
}

// NewAddressRepository returns a Postgres-backed implementation.
func NewAddressRepository(db DB) AddressRepository {
	return &addressRepository{db: db}
}

// AddOrGet inserts the address or resolves the existing row for the same
// tuple, filling in the id. The no-op conflict update makes RETURNING yield
// the existing row.
func (r *addressRepository) AddOrGet(ctx context.Context, address *domain.Address) error {
	const query = `
        INSERT INTO addresses (street, house_number, zip_code, city, state)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (street, house_number, zip_code, city)
        DO UPDATE SET street = EXCLUDED.street
        RETURNING id`

	return r.db.QueryRow(ctx, query,
		address.Street,
		address.HouseNumber,
		address.ZipCode,
		address.City,
		address.State,
	).Scan(&address.ID)
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	const query = `
        SELECT id, street, house_number, zip_code, city, state
        FROM addresses WHERE id=$1`

	var address domain.Address
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&address.ID,
		&address.Street,
		&address.HouseNumber,
		&address.ZipCode,
		&address.City,
		&address.State,
	); err != nil {
		return nil, err
	}
	return &address, nil
}

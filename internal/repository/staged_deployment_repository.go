package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/deployment-service/internal/domain"
)

// StagedDeploymentRepository persists provisional deployments awaiting
// confirmation.
type StagedDeploymentRepository interface {
	Create(ctx context.Context, staged *domain.StagedDeployment) error
	GetByID(ctx context.Context, id string) (*domain.StagedDeployment, error)
	Delete(ctx context.Context, id string) error
}

type stagedDeploymentRepository struct {
	db DB
}

// NewStagedDeploymentRepository instantiates the repository.
func NewStagedDeploymentRepository(db DB) StagedDeploymentRepository {
	return &stagedDeploymentRepository{db: db}
}

func (r *stagedDeploymentRepository) Create(ctx context.Context, staged *domain.StagedDeployment) error {
	const query = `
        INSERT INTO staged_deployments (id, customer_id, connection, address_id, annotation, submitter_email)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`

	return r.db.QueryRow(ctx, query,
		staged.ID,
		staged.CustomerID,
		staged.Connection,
		staged.AddressID,
		staged.Annotation,
		staged.SubmitterEmail,
	).Scan(&staged.CreatedAt)
}

func (r *stagedDeploymentRepository) GetByID(ctx context.Context, id string) (*domain.StagedDeployment, error) {
	const query = `
        SELECT s.id, s.customer_id, s.connection, s.address_id, s.annotation, s.submitter_email, s.created_at,
               a.street, a.house_number, a.zip_code, a.city, a.state
        FROM staged_deployments s
        JOIN addresses a ON a.id = s.address_id
        WHERE s.id=$1`

	var (
		staged  domain.StagedDeployment
		address domain.Address
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&staged.ID,
		&staged.CustomerID,
		&staged.Connection,
		&staged.AddressID,
		&staged.Annotation,
		&staged.SubmitterEmail,
		&staged.CreatedAt,
		&address.Street,
		&address.HouseNumber,
		&address.ZipCode,
		&address.City,
		&address.State,
	); err != nil {
		return nil, err
	}
	address.ID = staged.AddressID
	staged.Address = &address
	return &staged, nil
}

func (r *stagedDeploymentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM staged_deployments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

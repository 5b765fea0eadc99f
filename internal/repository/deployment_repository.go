package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/domain"
)

// DeploymentRepository encapsulates deployment persistence. Every read takes
// an authz.Scope so out-of-scope rows behave exactly like absent rows.
type DeploymentRepository interface {
	Create(ctx context.Context, deployment *domain.Deployment) error
	Update(ctx context.Context, deployment *domain.Deployment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64, scope authz.Scope) (*domain.Deployment, error)
	List(ctx context.Context, scope authz.Scope) ([]domain.Deployment, error)
	SystemIDs(ctx context.Context, deploymentID int64) ([]int64, error)
	SetTechnicianAnnotation(ctx context.Context, id int64, annotation json.RawMessage) error
	SetChecklistFlag(ctx context.Context, id int64, flag domain.ChecklistFlag, done bool) error
}

type deploymentRepository struct {
	db DB
}

// NewDeploymentRepository instantiates the repository.
func NewDeploymentRepository(db DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

const deploymentColumns = `
        d.id, d.customer_id, d.type, d.connection, d.address_id, d.lpt_address_id,
        d.scheduled, d.annotation, d.testing, d.technician_annotation,
        d.construction_site_preparation_feedback, d.internet_connection, d.hardware_installation,
        d.created_at, d.updated_at,
        a.street, a.house_number, a.zip_code, a.city, a.state,
        lpt.street, lpt.house_number, lpt.zip_code, lpt.city, lpt.state,
        c.company, c.abbreviation,
        COALESCE(sys.ids, '{}') AS systems`

const deploymentJoins = `
        FROM deployments d
        JOIN addresses a ON a.id = d.address_id
        LEFT JOIN addresses lpt ON lpt.id = d.lpt_address_id
        JOIN customers c ON c.id = d.customer_id
        LEFT JOIN LATERAL (
            SELECT ARRAY_AGG(s.id ORDER BY s.id) AS ids
            FROM systems s WHERE s.deployment_id = d.id
        ) sys ON TRUE`

func (r *deploymentRepository) Create(ctx context.Context, deployment *domain.Deployment) error {
	const query = `
        INSERT INTO deployments
            (customer_id, type, connection, address_id, lpt_address_id, scheduled, annotation, testing)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		deployment.CustomerID,
		deployment.Type,
		deployment.Connection,
		deployment.AddressID,
		deployment.LPTAddressID,
		deployment.Scheduled,
		deployment.Annotation,
		deployment.Testing,
	).Scan(&deployment.ID, &deployment.CreatedAt, &deployment.UpdatedAt)
}

func (r *deploymentRepository) Update(ctx context.Context, deployment *domain.Deployment) error {
	const query = `
        UPDATE deployments SET type=$1, connection=$2, address_id=$3, lpt_address_id=$4,
            scheduled=$5, annotation=$6, testing=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.db.Exec(ctx, query,
		deployment.Type,
		deployment.Connection,
		deployment.AddressID,
		deployment.LPTAddressID,
		deployment.Scheduled,
		deployment.Annotation,
		deployment.Testing,
		deployment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a deployment row. Installed systems are detached first,
// not deleted: root may remove a site that still has hardware on it, and
// the units keep existing without a location.
func (r *deploymentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE systems SET deployment_id=NULL WHERE deployment_id=$1`, id); err != nil {
		return err
	}

	cmd, err := r.db.Exec(ctx, `DELETE FROM deployments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deploymentRepository) GetByID(ctx context.Context, id int64, scope authz.Scope) (*domain.Deployment, error) {
	query := `SELECT` + deploymentColumns + deploymentJoins + ` WHERE d.id=$1`
	args := []any{id}
	if !scope.All {
		query += ` AND d.customer_id = ANY($2)`
		args = append(args, scope.CustomerIDs)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	deployment, err := scanDeployment(rows)
	if err != nil {
		return nil, err
	}
	return deployment, nil
}

func (r *deploymentRepository) List(ctx context.Context, scope authz.Scope) ([]domain.Deployment, error) {
	query := `SELECT` + deploymentColumns + deploymentJoins
	args := []any{}
	if !scope.All {
		query += ` WHERE d.customer_id = ANY($1)`
		args = append(args, scope.CustomerIDs)
	}
	query += ` ORDER BY d.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Deployment
	for rows.Next() {
		deployment, err := scanDeployment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *deployment)
	}
	return result, rows.Err()
}

func (r *deploymentRepository) SystemIDs(ctx context.Context, deploymentID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM systems WHERE deployment_id=$1 ORDER BY id`, deploymentID)
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

func (r *deploymentRepository) SetTechnicianAnnotation(ctx context.Context, id int64, annotation json.RawMessage) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE deployments SET technician_annotation=$1, updated_at=NOW() WHERE id=$2`,
		annotation, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetChecklistFlag marks a checklist step done (timestamp NOW) or clears it.
func (r *deploymentRepository) SetChecklistFlag(ctx context.Context, id int64, flag domain.ChecklistFlag, done bool) error {
	if !flag.Valid() {
		return fmt.Errorf("unknown checklist flag %q", flag)
	}

	value := "NULL"
	if done {
		value = "NOW()"
	}
	query := fmt.Sprintf(`UPDATE deployments SET %s=%s, updated_at=NOW() WHERE id=$1`, flag, value)

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanDeployment(rows pgx.Rows) (*domain.Deployment, error) {
	var (
		deployment domain.Deployment
		address    domain.Address
		customer   domain.Customer

		lptStreet, lptHouseNumber, lptZipCode, lptCity, lptState *string
	)

	if err := rows.Scan(
		&deployment.ID,
		&deployment.CustomerID,
		&deployment.Type,
		&deployment.Connection,
		&deployment.AddressID,
		&deployment.LPTAddressID,
		&deployment.Scheduled,
		&deployment.Annotation,
		&deployment.Testing,
		&deployment.TechnicianAnnotation,
		&deployment.ConstructionSitePreparationFeedback,
		&deployment.InternetConnection,
		&deployment.HardwareInstallation,
		&deployment.CreatedAt,
		&deployment.UpdatedAt,
		&address.Street,
		&address.HouseNumber,
		&address.ZipCode,
		&address.City,
		&address.State,
		&lptStreet,
		&lptHouseNumber,
		&lptZipCode,
		&lptCity,
		&lptState,
		&customer.Company,
		&customer.Abbreviation,
		&deployment.Systems,
	); err != nil {
		return nil, err
	}

	address.ID = deployment.AddressID
	deployment.Address = &address

	if deployment.LPTAddressID != nil && lptStreet != nil {
		deployment.LPTAddress = &domain.Address{
			ID:          *deployment.LPTAddressID,
			Street:      *lptStreet,
			HouseNumber: *lptHouseNumber,
			ZipCode:     *lptZipCode,
			City:        *lptCity,
			State:       lptState,
		}
	}

	customer.ID = deployment.CustomerID
	deployment.Customer = &customer

	return &deployment, nil
}

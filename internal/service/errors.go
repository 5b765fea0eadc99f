package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/deployment-service/pkg/util"
)

// notFoundOnNoRows maps pgx.ErrNoRows to a 404 for the given resource and
// wraps everything else as an internal error.
func notFoundOnNoRows(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(resource, nil)
	}
	return util.MapError(err)
}

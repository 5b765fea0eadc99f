package authz

import (
	"github.com/fieldops/deployment-service/internal/domain"
	"github.com/fieldops/deployment-service/pkg/util"
)

// CanModify checks whether the account may re-type or delete a deployment
// with the given installed systems. Root is always permitted; everyone else
// is blocked while hardware is physically deployed at the site. The blocking
// system ids are carried in the returned error for client display.
func CanModify(account *domain.Account, systems []int64) error {
	if account.Root {
		return nil
	}
	if len(systems) > 0 {
		return util.NewSystemsDeployed(systems)
	}
	return nil
}

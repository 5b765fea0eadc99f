package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/fieldops/deployment-service/pkg/util"
)

// RequireAccount ensures a caller is authenticated.
func RequireAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := AccountFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRoot ensures the caller holds the root flag. Deployment-admin
// checks need a registry lookup and live in the service layer instead.
func RequireRoot() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !account.Root {
			return apperrors.NewForbidden("root required")
		}
		return c.Next()
	}
}

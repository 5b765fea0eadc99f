package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldops/deployment-service/internal/api/http/handlers"
	"github.com/fieldops/deployment-service/internal/auth"
)

// RouterDependencies bundles everything route registration needs.
type RouterDependencies struct {
	AuthMiddleware *auth.AuthMiddleware
	Deployments    *handlers.DeploymentsHandler
	Checklist      *handlers.ChecklistHandler
	Metadata       *handlers.MetadataHandler
	Confirm        *handlers.ConfirmHandler
	Health         *handlers.HealthHandler
	Registry       *prometheus.Registry
}

// RegisterRoutes wires all endpoints. Fixed-path routes are registered
// before the /:id parameter routes so they take precedence.
func RegisterRoutes(app *fiber.App, deps RouterDependencies) {
	app.Get("/health/live", deps.Health.Live)
	app.Get("/health/ready", deps.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Confirmation is public; the encrypted token is the credential.
	app.Get("/confirm/:token", deps.Confirm.Confirm)

	authed := app.Group("", deps.AuthMiddleware.Handle, auth.RequireAccount())

	authed.Get("/", deps.Deployments.List)
	authed.Get("/all", auth.RequireRoot(), deps.Deployments.All)
	authed.Get("/customers", deps.Metadata.Customers)
	authed.Get("/deployments", deps.Metadata.Deployments)
	authed.Get("/hw-models", deps.Metadata.HardwareModels)
	authed.Get("/is-admin", deps.Metadata.IsAdmin)
	authed.Post("/submit", deps.Confirm.Submit)

	authed.Post("/", deps.Deployments.Create)
	authed.Get("/:id", deps.Deployments.Get)
	authed.Patch("/:id", deps.Deployments.Patch)
	authed.Delete("/:id", deps.Deployments.Delete)

	authed.Patch("/:id/annotation", deps.Checklist.UpdateAnnotation)
	authed.Post("/:id/construction-site-preparation", deps.Checklist.SetConstructionSitePreparation)
	authed.Post("/:id/internet-connection", deps.Checklist.SetInternetConnection)
	authed.Post("/:id/hardware-installation", deps.Checklist.SetHardwareInstallation)
}

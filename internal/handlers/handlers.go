// File: internal/handlers/handlers.go
package handlers

import (
	"time"

	"webshop/internal/config"
	"webshop/internal/core"
)

// Services bundles the business layer used by the HTTP handlers.
type Services struct {
	Auth      core.AuthService
	Users     core.UserService
	Roles     core.RoleService
	Addresses core.AddressService
	Companies core.CompanyService
	Catalog   core.CatalogService
	Images    core.ImageService
	Orders    core.OrderService
}

type Handlers struct {
	app *config.Application
	Services
}

func New(app *config.Application, services Services) *Handlers {
	return &Handlers{app: app, Services: services}
}

var startTime = time.Now()

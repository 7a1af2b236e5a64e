package adminapi

import (
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/auth"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/webserver"
)

// AdminAPI holds the services behind the storefront routes.
type AdminAPI struct {
	cfg     *config.AppConfig
	catalog *catalog.Service
	auth    *auth.Service
}

func New(cfg *config.AppConfig, catalogSvc *catalog.Service, authSvc *auth.Service) *AdminAPI {
	return &AdminAPI{cfg: cfg, catalog: catalogSvc, auth: authSvc}
}

// Init registers every storefront route on the server.
func (a *AdminAPI) Init(s *webserver.AdminServer) {
	a.registerAuthRoutes(s)
	a.registerProductRoutes(s)
	a.registerMetricsRoutes(s)
}

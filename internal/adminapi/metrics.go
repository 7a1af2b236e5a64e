package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/talkincode/storefront/internal/webserver"
	"github.com/talkincode/storefront/pkg/metrics"
)

const maxMetricsHours = 720

func (a *AdminAPI) registerMetricsRoutes(s *webserver.AdminServer) {
	s.AuthGET("/admin/metrics", a.getMetrics)
}

// getMetrics sums the catalog and auth counters over the last `hours` hours (default 24).
func (a *AdminAPI) getMetrics(c echo.Context) error {
	hours := 24
	if q := strings.TrimSpace(c.QueryParam("hours")); q != "" {
		h, err := cast.ToIntE(q)
		if err != nil || h < 1 || h > maxMetricsHours {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "hours must be between 1 and 720", err)
		}
		hours = h
	}

	summary, err := metrics.Summary(time.Duration(hours) * time.Hour)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metrics", err)
	}
	return ok(c, map[string]interface{}{
		"data":  summary,
		"hours": hours,
	})
}

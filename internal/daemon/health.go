package daemon

import (
	"context"
	"fmt"
	"strings"

	"fitroom/internal/api"
	"fitroom/internal/preflight"
)

// HealthChecks runs the probes behind GET /api/health: a ledger database
// inspection followed by the startup preflight battery.
func (d *Daemon) HealthChecks(ctx context.Context) []api.HealthCheck {
	checks := make([]api.HealthCheck, 0, 8)
	checks = append(checks, d.databaseCheck(ctx))
	for _, result := range preflight.RunAll(ctx, d.cfg) {
		checks = append(checks, api.HealthCheck{
			Name:    result.Name,
			Healthy: result.Passed,
			Detail:  result.Detail,
		})
	}
	return checks
}

func (d *Daemon) databaseCheck(ctx context.Context) api.HealthCheck {
	check := api.HealthCheck{Name: "Ledger database"}

	health, err := d.DatabaseHealth(ctx)
	switch {
	case err != nil:
		check.Detail = err.Error()
	case health.Error != "":
		check.Detail = health.Error
	case !health.DatabaseExists:
		check.Detail = "database file does not exist"
	case !health.TableExists:
		check.Detail = "generations table missing"
	case len(health.MissingColumns) > 0:
		check.Detail = fmt.Sprintf("missing columns: %s", strings.Join(health.MissingColumns, ", "))
	case !health.IntegrityCheck:
		check.Detail = "integrity check failed"
	default:
		check.Healthy = true
		check.Detail = fmt.Sprintf("%d generations, %d variants enabled", health.TotalGenerations, health.EnabledVariants)
	}
	return check
}

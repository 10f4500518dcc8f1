package dispatcher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/registry"
)

// HealthChecker probes the generation provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) *genclient.HealthStatus
}

// ToolCatalog exposes the validated tool registry.
type ToolCatalog interface {
	Describe() []registry.ToolInfo
	Health() *registry.HealthOutput
}

// HealthReport is the generation health payload extended with the registry check.
type HealthReport struct {
	*genclient.HealthStatus
	Registry *registry.HealthOutput `json:"registry,omitempty"`
}

// Healthy reports whether both the provider and the registry are healthy.
func (h *HealthReport) Healthy() bool {
	return h != nil && h.HealthStatus.Healthy() && (h.Registry == nil || h.Registry.Status == genclient.StatusHealthy)
}

// CheckHealth runs the provider probe and the registry check concurrently.
// A nil catalog skips the registry check.
func CheckHealth(ctx context.Context, gen HealthChecker, cat ToolCatalog) *HealthReport {
	report := &HealthReport{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.HealthStatus = gen.HealthCheck(gctx)
		return nil
	})
	if cat != nil {
		g.Go(func() error {
			report.Registry = cat.Health()
			return nil
		})
	}
	g.Wait()

	if !report.Healthy() {
		report.Status = genclient.StatusUnhealthy
		if report.Error == "" && report.Registry != nil && report.Registry.Status != genclient.StatusHealthy {
			report.Error = "registry_unavailable"
			report.Message = "Tool registry has not been validated"
		}
	}
	return report
}

package registry

import "time"

// HealthOutput reports whether the registry is ready to route requests.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks holds the individual registry checks.
type HealthChecks struct {
	Validated bool     `json:"validated"`
	Tools     int      `json:"tools"`
	Missing   []string `json:"missing,omitempty"`
}

// Health reports "healthy" once Validate has succeeded.
func (r *Registry) Health() *HealthOutput {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := "healthy"
	if !r.sealed {
		status = "unhealthy"
	}

	return &HealthOutput{
		Status: status,
		Checks: HealthChecks{
			Validated: r.sealed,
			Tools:     len(r.tools),
			Missing:   r.missingLocked(),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

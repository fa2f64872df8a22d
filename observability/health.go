package observability

import (
	"context"
	"slices"
	"time"
)

// HealthStatus is the state reported by a component.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

// severity orders statuses from best to worst. Unknown statuses rank as down.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUp:
		return 0
	case HealthStatusDegraded:
		return 1
	default:
		return 2
	}
}

// Health is the report of one component.
type Health struct {
	Name     string            `json:"name"`
	Status   HealthStatus      `json:"status"`
	Message  string            `json:"message,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
	Duration time.Duration     `json:"duration_ns,omitempty"`
}

// HealthChecker is implemented by container components that can report
// their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// ServiceHealth aggregates component reports. Its status is the worst
// component status.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// NewServiceHealth returns an empty report with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Version: version, Status: HealthStatusUp}
}

// AddComponent records h and lowers the overall status when h is worse.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	if h.Status.severity() > sh.Status.severity() {
		sh.Status = h.Status
	}
}

// CheckInstances runs CheckHealth on every instance implementing
// HealthChecker, in key order, timing each check. Reports without a name are
// named after their key.
func (sh *ServiceHealth) CheckInstances(ctx context.Context, instances map[string]any) *ServiceHealth {
	keys := make([]string, 0, len(instances))
	for k := range instances {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		checker, ok := instances[k].(HealthChecker)
		if !ok {
			continue
		}
		start := time.Now()
		h := checker.CheckHealth(ctx)
		h.Duration = time.Since(start)
		if h.Name == "" {
			h.Name = k
		}
		sh.AddComponent(h)
	}
	return sh
}

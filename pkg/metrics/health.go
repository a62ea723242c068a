package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/driftbase/driftbase/ring"
)

// HealthStatus is the JSON body served by /healthz and /readyz.
type HealthStatus struct {
	Status     string            `json:"status"` // "healthy"/"unhealthy", or "ready"/"not_ready"
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	StartTime  time.Time         `json:"-"`
}

var healthChecker = &HealthChecker{
	components: make(map[string]ComponentHealth),
	startTime:  time.Now(),
}

// ComponentHealth is the last reported state of one process subsystem
// (the table store, the block store, the gateway HTTP server, ...).
type ComponentHealth struct {
	Name     string
	Critical bool
	Healthy  bool
	Message  string
	Updated  time.Time
}

// HealthChecker aggregates component health plus ring-quorum state into
// the /healthz, /readyz and /livez responses. A process registers its
// subsystems with RegisterComponent at startup and its ring view with
// RegisterRing once membership is known.
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	startTime  time.Time
	version    string

	view              *ring.View
	replicationFactor int
}

// SetVersion sets the version string reported in health responses.
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// RegisterComponent records a subsystem's initial health. critical marks
// the component as one /readyz requires to be healthy before the
// process accepts traffic; non-critical components only affect
// /healthz.
func RegisterComponent(name string, critical, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.components[name] = ComponentHealth{
		Name:     name,
		Critical: critical,
		Healthy:  healthy,
		Message:  message,
		Updated:  time.Now(),
	}
}

// UpdateComponent updates a previously registered component's health
// without changing its criticality.
func UpdateComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	comp, ok := healthChecker.components[name]
	if !ok {
		comp = ComponentHealth{Name: name}
	}
	comp.Healthy = healthy
	comp.Message = message
	comp.Updated = time.Now()
	healthChecker.components[name] = comp
}

// RegisterRing tells the health checker which ring view and replication
// factor govern quorum readiness. /readyz then reports not_ready
// whenever the membership oracle knows of fewer than quorum(R) nodes,
// mirroring the acknowledgment threshold table.ReplicatedTable and
// blockrpc.Client require before a write succeeds: a process cannot
// serve durable writes if its own ring view can't staff a quorum.
func RegisterRing(view *ring.View, replicationFactor int) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.view = view
	healthChecker.replicationFactor = replicationFactor
}

// quorum mirrors table.quorum and blockrpc.quorum: ⌈(R+1)/2⌉ acks.
func quorum(replicationFactor int) int {
	return (replicationFactor + 2) / 2
}

// GetHealth returns the overall health status: unhealthy if any
// registered component, critical or not, is unhealthy.
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "healthy"
	components := make(map[string]string, len(healthChecker.components))

	for name, comp := range healthChecker.components {
		if !comp.Healthy {
			status = "unhealthy"
			components[name] = "unhealthy: " + comp.Message
		} else {
			components[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Version:    healthChecker.version,
		Uptime:     time.Since(healthChecker.startTime).String(),
		StartTime:  healthChecker.startTime,
	}
}

// GetReadiness returns whether the process can serve traffic: every
// critical component must report healthy, and the ring view (if
// registered) must know of at least quorum(replicationFactor) nodes.
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	status := "ready"
	message := ""
	components := make(map[string]string, len(healthChecker.components)+1)

	for name, comp := range healthChecker.components {
		if !comp.Critical {
			continue
		}
		if !comp.Healthy {
			status = "not_ready"
			message = "waiting for " + name
			components[name] = "not ready: " + comp.Message
		} else {
			components[name] = "ready"
		}
	}

	view := healthChecker.view
	replicationFactor := healthChecker.replicationFactor
	version := healthChecker.version
	startTime := healthChecker.startTime
	healthChecker.mu.RUnlock()

	if view != nil {
		known := len(view.Members())
		need := quorum(replicationFactor)
		if known < need {
			status = "not_ready"
			ringMsg := fmt.Sprintf("ring quorum unreachable: %d/%d nodes known, need %d", known, replicationFactor, need)
			components["ring"] = ringMsg
			if message == "" {
				message = ringMsg
			}
		} else {
			components["ring"] = fmt.Sprintf("%d/%d nodes known, need %d", known, replicationFactor, need)
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Message:    message,
		Version:    version,
		Uptime:     time.Since(startTime).String(),
		StartTime:  startTime,
	}
}

// HealthHandler serves /healthz.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()

		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(health)
	}
}

// ReadyHandler serves /readyz.
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := GetReadiness()

		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if readiness.Status != "ready" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(readiness)
	}
}

// LivenessHandler serves /livez: always 200 while the process is up,
// independent of component or quorum state.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"uptime": time.Since(healthChecker.startTime).String(),
		})
	}
}

package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/driftbase/driftbase/pkg/cluster"
	"github.com/driftbase/driftbase/ring"
)

func resetHealthChecker() {
	healthChecker = &HealthChecker{
		components: make(map[string]ComponentHealth),
		startTime:  time.Now(),
	}
}

func TestRegisterComponent(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("table", true, true, "running")

	comp, ok := healthChecker.components["table"]
	if !ok {
		t.Fatal("table component not registered")
	}
	if !comp.Critical {
		t.Error("table should be registered critical")
	}
	if !comp.Healthy {
		t.Error("table should be healthy")
	}
	if comp.Message != "running" {
		t.Errorf("message = %q, want %q", comp.Message, "running")
	}
}

func TestGetHealth_NonCriticalUnhealthyStillReportsUnhealthy(t *testing.T) {
	// GetHealth aggregates every registered component regardless of
	// criticality: a broken non-critical component (e.g. the periodic
	// Collector) should still surface on /healthz even though it does
	// not gate /readyz.
	resetHealthChecker()

	RegisterComponent("gateway", true, true, "")
	RegisterComponent("collector", false, false, "stalled")

	health := GetHealth()

	if health.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", health.Status)
	}
	if health.Components["collector"] != "unhealthy: stalled" {
		t.Errorf("collector = %q", health.Components["collector"])
	}
}

func TestGetReadiness_IgnoresNonCriticalComponents(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("table", true, true, "")
	RegisterComponent("blockrpc", true, true, "")
	RegisterComponent("gateway", true, true, "")
	RegisterComponent("collector", false, false, "stalled")

	readiness := GetReadiness()

	if readiness.Status != "ready" {
		t.Errorf("status = %q, want ready (non-critical failure should not block readiness)", readiness.Status)
	}
	if _, ok := readiness.Components["collector"]; ok {
		t.Error("non-critical component should not appear in readiness components")
	}
}

func TestGetReadiness_CriticalComponentUnhealthy(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("table", true, false, "boltdb open failed")
	RegisterComponent("blockrpc", true, true, "")
	RegisterComponent("gateway", true, true, "")

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", readiness.Status)
	}
	if readiness.Components["table"] != "not ready: boltdb open failed" {
		t.Errorf("table = %q", readiness.Components["table"])
	}
}

func TestGetReadiness_CriticalComponentMissing(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("gateway", true, true, "")
	// table and blockrpc were never registered.

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", readiness.Status)
	}
}

func TestGetReadiness_RingBelowQuorum(t *testing.T) {
	// Replication factor 3 needs quorum(3) = 2 known nodes; a single-node
	// ring view can never satisfy a quorum write, so readiness must
	// reflect that even when every registered component is healthy.
	resetHealthChecker()
	RegisterComponent("table", true, true, "")
	RegisterComponent("blockrpc", true, true, "")
	RegisterComponent("gateway", true, true, "")

	view := ring.New(cluster.NewStatic("node-a"))
	RegisterRing(view, 3)

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", readiness.Status)
	}
	if readiness.Message == "" {
		t.Error("expected a message explaining the quorum shortfall")
	}
}

func TestGetReadiness_RingAtQuorum(t *testing.T) {
	resetHealthChecker()
	RegisterComponent("table", true, true, "")
	RegisterComponent("blockrpc", true, true, "")
	RegisterComponent("gateway", true, true, "")

	view := ring.New(cluster.NewStatic("node-a", "node-b", "node-c"))
	RegisterRing(view, 3)

	readiness := GetReadiness()

	if readiness.Status != "ready" {
		t.Errorf("status = %q, want ready", readiness.Status)
	}
	if _, ok := readiness.Components["ring"]; !ok {
		t.Error("expected a ring component entry once RegisterRing was called")
	}
}

func TestGetReadiness_NoRingRegisteredSkipsQuorumCheck(t *testing.T) {
	// A process that never calls RegisterRing (e.g. the gateway binary
	// before it dials any peers) should not be penalized for an absent
	// ring view.
	resetHealthChecker()
	RegisterComponent("gateway", true, true, "")

	readiness := GetReadiness()

	if readiness.Status != "ready" {
		t.Errorf("status = %q, want ready", readiness.Status)
	}
	if _, ok := readiness.Components["ring"]; ok {
		t.Error("ring component should not appear when RegisterRing was never called")
	}
}

func TestHealthHandler(t *testing.T) {
	resetHealthChecker()
	healthChecker.version = "test"
	RegisterComponent("gateway", true, true, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	HealthHandler()(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("body status = %q, want healthy", health.Status)
	}
	if health.Version != "test" {
		t.Errorf("version = %q, want test", health.Version)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	resetHealthChecker()
	RegisterComponent("blockrpc", true, false, "disk full")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	HealthHandler()(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestReadyHandler_RingBelowQuorum(t *testing.T) {
	resetHealthChecker()
	RegisterComponent("table", true, true, "")
	RegisterComponent("blockrpc", true, true, "")
	RegisterComponent("gateway", true, true, "")
	RegisterRing(ring.New(cluster.NewStatic("node-a")), 3)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	ReadyHandler()(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	var readiness HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&readiness); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if readiness.Status != "not_ready" {
		t.Errorf("body status = %q, want not_ready", readiness.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	resetHealthChecker()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	w := httptest.NewRecorder()
	LivenessHandler()(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response["status"] != "alive" {
		t.Errorf("status = %q, want alive", response["status"])
	}
	if response["uptime"] == "" {
		t.Error("uptime should not be empty")
	}
}

func TestUpdateComponent(t *testing.T) {
	resetHealthChecker()
	RegisterComponent("table", true, true, "ok")

	UpdateComponent("table", false, "quorum unreachable")

	comp := healthChecker.components["table"]
	if comp.Healthy {
		t.Error("component should be unhealthy after update")
	}
	if comp.Message != "quorum unreachable" {
		t.Errorf("message = %q, want %q", comp.Message, "quorum unreachable")
	}
	if !comp.Critical {
		t.Error("UpdateComponent must not clear a previously registered component's criticality")
	}
}

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewStreamer_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStreamer(reg)

	m.Connected.Set(1)
	m.Reconnects.Inc()
	m.EventsDispatched.WithLabelValues("playlist").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"clientbase_connected",
		"clientbase_reconnect_attempts_total",
		"clientbase_events_dispatched_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestHandler_Serves(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStreamer(reg)
	m.Connected.Set(1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "clientbase_connected 1") {
		t.Error("response does not contain clientbase_connected gauge")
	}
}

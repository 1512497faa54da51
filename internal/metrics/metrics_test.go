package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordingAndHandler(t *testing.T) {
	m := NewMetrics("test")

	m.RecordTokenAcquisition("cached", "success")
	m.RecordTokenAcquisition("refresh", "token_exchange")
	m.RecordAPIRequest("get_all_projects", "live", "ok", 20*time.Millisecond)
	m.RecordAPIRequest("get_task", "live", "not_found_or_denied", 5*time.Millisecond)
	m.RecordCallbackRequest("/callback", "200")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, name := range []string{
		"test_token_acquisitions_total",
		"test_api_requests_total",
		"test_api_request_duration_seconds",
		"test_callback_requests_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected metrics output to contain %s", name)
		}
	}

	if got := testutil.ToFloat64(m.TokenAcquisitions.WithLabelValues("cached", "success")); got != 1 {
		t.Fatalf("expected one cached acquisition, got %v", got)
	}
	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("get_task", "live", "not_found_or_denied")); got != 1 {
		t.Fatalf("expected one failed get_task, got %v", got)
	}

	if _, err := m.Registry().Gather(); err != nil {
		t.Fatalf("expected gather to succeed: %v", err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordTokenAcquisition("cached", "success")
	m.RecordAPIRequest("get_task", "live", "ok", time.Millisecond)
	m.RecordCallbackRequest("/callback", "200")
}

package observability

import (
	"testing"
	"time"
)

func TestMetrics_RecordsRequestsAndErrors(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordRequest("/users", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/users", "GET", 200, 7*time.Millisecond)
	m.RecordError("/users/1", "GET", "NOT_FOUND")

	requests := m.RequestTotals()
	if requests["/users|GET|200"] != 2 {
		t.Fatalf("unexpected request totals: %v", requests)
	}

	errs := m.ErrorTotals()
	if errs["/users/1|GET|NOT_FOUND"] != 1 {
		t.Fatalf("unexpected error totals: %v", errs)
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRequest("/users", "GET", 200, time.Millisecond)
	m.RecordError("/users", "GET", "X")
	if m.RequestTotals() != nil || m.ErrorTotals() != nil {
		t.Fatalf("expected nil totals from nil metrics")
	}
}

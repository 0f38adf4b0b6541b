package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"asset-browser/internal/queue"
	"asset-browser/internal/records"
	"asset-browser/internal/worker"
)

func newTestServer(t *testing.T) (*Server, *records.Collection, *queue.Unique) {
	t.Helper()

	coll := records.NewCollection()
	coll.Reset([]*records.Record{{Path: "/a"}, {Path: "/b"}})

	q := queue.New("metadata")
	monitor := worker.NewMonitor(time.Minute)
	monitor.Register(q)

	return New("0", monitor, coll, []*queue.Unique{q}, true, true), coll, q
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestLivenessAlwaysOK(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/livez"} {
		rr := doRequest(t, s, http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rr.Code)
		}
	}
}

func TestReadinessFollowsScanState(t *testing.T) {
	s, _, _ := newTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz before scan = %d, want 503", rr.Code)
	}

	s.SetReady()

	rr = doRequest(t, s, http.MethodGet, "/readyz")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /readyz after scan = %d, want 200", rr.Code)
	}
}

func TestProgressReportsQueueDepths(t *testing.T) {
	s, coll, q := newTestServer(t)

	q.Put(coll.Ref(0), false)
	q.Put(coll.Ref(1), false)

	rr := doRequest(t, s, http.MethodGet, "/api/progress")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/progress = %d, want 200", rr.Code)
	}

	var resp ProgressResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding progress response: %v", err)
	}

	if resp.Pending != 2 {
		t.Errorf("pending = %d, want 2", resp.Pending)
	}
	if resp.Queues["metadata"] != 2 {
		t.Errorf("queues[metadata] = %d, want 2", resp.Queues["metadata"])
	}
	if resp.Text != "Loading... (2 left)" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Records != 2 {
		t.Errorf("records = %d, want 2", resp.Records)
	}
	if resp.FullyLoaded {
		t.Error("fullyLoaded = true with pending work")
	}
}

func TestProgressAfterDrain(t *testing.T) {
	s, coll, _ := newTestServer(t)
	coll.SetFullyLoaded(true)

	rr := doRequest(t, s, http.MethodGet, "/api/progress")

	var resp ProgressResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Pending != 0 || resp.Text != "" {
		t.Errorf("drained progress = (%d, %q), want (0, \"\")", resp.Pending, resp.Text)
	}
	if !resp.FullyLoaded {
		t.Error("fullyLoaded = false after the sweep latch")
	}
}

func TestVersionInfo(t *testing.T) {
	s, _, _ := newTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/api/version")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/version = %d, want 200", rr.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != statusStarting {
		t.Errorf("status = %q before ready, want %q", resp.Status, statusStarting)
	}
	if resp.GoVersion == "" || resp.NumCPU == 0 {
		t.Error("system info missing from version response")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d, want 200", rr.Code)
	}
}

func TestMetricsDisabled(t *testing.T) {
	coll := records.NewCollection()
	monitor := worker.NewMonitor(time.Minute)
	s := New("0", monitor, coll, nil, false, true)

	rr := doRequest(t, s, http.MethodGet, "/metrics")
	if rr.Code == http.StatusOK {
		t.Error("GET /metrics served despite metrics being disabled")
	}
}

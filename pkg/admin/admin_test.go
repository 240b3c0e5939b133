package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wondertwin-ai/starjar/pkg/server"
	"github.com/wondertwin-ai/starjar/pkg/store"
)

type mockState struct {
	data        map[string]string
	resetCalled bool
	resetErr    error
}

func newMockState() *mockState {
	return &mockState{data: map[string]string{"stars": "10"}}
}

func (m *mockState) Snapshot() (any, error) {
	return m.data, nil
}

func (m *mockState) LoadState(data []byte) error {
	var d map[string]string
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.data = d
	return nil
}

func (m *mockState) Reset() error {
	m.resetCalled = true
	if m.resetErr != nil {
		return m.resetErr
	}
	m.data = map[string]string{}
	return nil
}

func setupTestServer(state StateStore, clock *store.Clock) (*httptest.Server, *server.Middleware) {
	mw := server.NewMiddleware(&server.Config{Name: "test-admin"}, server.NewLogger(io.Discard, false))
	h := NewHandler(state, mw, clock)

	r := chi.NewRouter()
	h.Routes(r)
	return httptest.NewServer(r), mw
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := setupTestServer(newMockState(), store.NewClock())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/admin/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body map[string]string
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("unexpected health %d %+v", resp.StatusCode, body)
	}
}

func TestHandleReset(t *testing.T) {
	state := newMockState()
	clk := store.NewClock()
	clk.Advance(time.Hour)

	srv, mw := setupTestServer(state, clk)
	defer srv.Close()
	mw.ReqLog.Add(server.RequestLogEntry{Path: "/v1/stars"})
	mw.Idempotent.Store("k", 200, nil)

	resp, err := http.Post(srv.URL+"/admin/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !state.resetCalled {
		t.Error("expected state Reset to be called")
	}
	if clk.Offset() != 0 {
		t.Errorf("expected clock offset to be reset, got %v", clk.Offset())
	}
	if len(mw.ReqLog.Entries()) != 0 || mw.Idempotent.Len() != 0 {
		t.Error("expected request log and idempotency cache cleared")
	}
}

func TestHandleResetFailure(t *testing.T) {
	state := newMockState()
	state.resetErr = errors.New("disk full")
	srv, _ := setupTestServer(state, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestStateRoundTrip(t *testing.T) {
	state := newMockState()
	srv, _ := setupTestServer(state, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/state", "application/json", strings.NewReader(`{"stars":"42"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/admin/state")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["stars"] != "42" {
		t.Errorf("expected loaded state, got %+v", body)
	}
}

func TestLoadStateInvalid(t *testing.T) {
	srv, _ := setupTestServer(newMockState(), nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/state", "application/json", strings.NewReader(`not json`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleGetRequests(t *testing.T) {
	srv, mw := setupTestServer(newMockState(), nil)
	defer srv.Close()
	mw.ReqLog.Add(server.RequestLogEntry{Method: "POST", Path: "/v1/stars/add", StatusCode: 200})

	resp, err := http.Get(srv.URL + "/admin/requests")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var entries []server.RequestLogEntry
	decode(t, resp, &entries)
	if len(entries) != 1 || entries[0].Path != "/v1/stars/add" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestTimeAdvance(t *testing.T) {
	clk := store.NewClock()
	srv, _ := setupTestServer(newMockState(), clk)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/time/advance", "application/json", strings.NewReader(`{"duration":"24h"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body map[string]any
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if clk.Offset() != 24*time.Hour {
		t.Errorf("expected 24h offset, got %v", clk.Offset())
	}
	if body["offset"] != "24h0m0s" {
		t.Errorf("unexpected offset %v", body["offset"])
	}

	resp, err = http.Get(srv.URL + "/admin/time")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	decode(t, resp, &body)
	if _, ok := body["simulated"]; !ok {
		t.Error("expected simulated time")
	}
}

func TestTimeAdvanceErrors(t *testing.T) {
	srv, _ := setupTestServer(newMockState(), store.NewClock())
	defer srv.Close()
	for _, body := range []string{`nope`, `{"duration":"tomorrow"}`} {
		resp, err := http.Post(srv.URL+"/admin/time/advance", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}

	noClock, _ := setupTestServer(newMockState(), nil)
	defer noClock.Close()
	resp, err := http.Post(noClock.URL+"/admin/time/advance", "application/json", strings.NewReader(`{"duration":"1h"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without clock, got %d", resp.StatusCode)
	}
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func quietServer() *Server {
	return New(&Config{Name: "starjar-test"}, NewLogger(io.Discard, false))
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]int{"stars": 25})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if body["stars"] != 25 {
		t.Errorf("expected stars=25, got %+v", body)
	}
}

func TestJSONNilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %s", rec.Body.String())
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "invalid JSON body")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error map[string]any `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body.Error["message"] != "invalid JSON body" {
		t.Errorf("unexpected message %v", body.Error["message"])
	}
	if body.Error["type"] != "Bad Request" {
		t.Errorf("unexpected type %v", body.Error["type"])
	}
	if body.Error["code"] != float64(400) {
		t.Errorf("unexpected code %v", body.Error["code"])
	}
	if _, ok := body.Error["reason"]; ok {
		t.Error("plain errors carry no reason")
	}
}

func TestErrorReason(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorReason(rec, http.StatusUnprocessableEntity, "insufficient_stars", "not enough stars")

	var body struct {
		Error map[string]any `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body.Error["reason"] != "insufficient_stars" {
		t.Errorf("unexpected reason %v", body.Error["reason"])
	}
	if body.Error["code"] != float64(422) {
		t.Errorf("unexpected code %v", body.Error["code"])
	}
}

func TestServerRoutesAndRequestLog(t *testing.T) {
	s := quietServer()
	s.Router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusTeapot, map[string]string{"pong": "yes"})
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}

	entries := s.Middleware().ReqLog.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StatusCode != http.StatusTeapot || entries[0].Path != "/ping" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if entries[0].RequestID == "" {
		t.Error("expected request id")
	}
}

func TestServerRecoversPanics(t *testing.T) {
	s := quietServer()
	s.Router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestServeListenerShutsDownOnCancel(t *testing.T) {
	s := quietServer()
	s.Router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

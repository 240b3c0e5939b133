package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogEntry captures details of an incoming request for admin inspection.
type RequestLogEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Headers    map[string]string `json:"headers,omitempty"`
	StatusCode int               `json:"status_code"`
	Duration   time.Duration     `json:"duration_ms"`
	RequestID  string            `json:"request_id,omitempty"`
}

// RequestLog is a thread-safe ring buffer of recent requests.
type RequestLog struct {
	mu      sync.RWMutex
	entries []RequestLogEntry
	maxSize int
}

// NewRequestLog creates a request log with the given max size.
func NewRequestLog(maxSize int) *RequestLog {
	return &RequestLog{
		entries: make([]RequestLogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an entry, evicting the oldest if at capacity.
func (rl *RequestLog) Add(entry RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.entries) >= rl.maxSize {
		rl.entries = rl.entries[1:]
	}
	rl.entries = append(rl.entries, entry)
}

// Entries returns a copy of all log entries.
func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	out := make([]RequestLogEntry, len(rl.entries))
	copy(out, rl.entries)
	return out
}

// Clear removes all entries.
func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = rl.entries[:0]
}

// IdempotencyTracker caches responses by idempotency key.
type IdempotencyTracker struct {
	mu      sync.RWMutex
	entries map[string]idempotencyEntry
	ttl     time.Duration
}

type idempotencyEntry struct {
	StatusCode int
	Body       []byte
	CreatedAt  time.Time
}

// NewIdempotencyTracker creates a tracker whose entries expire after ttl.
// A zero ttl keeps entries until Reset.
func NewIdempotencyTracker(ttl time.Duration) *IdempotencyTracker {
	return &IdempotencyTracker{
		entries: make(map[string]idempotencyEntry),
		ttl:     ttl,
	}
}

// Check returns cached response data for the given key, or false if not seen.
func (it *IdempotencyTracker) Check(key string) (int, []byte, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	e, ok := it.entries[key]
	if !ok {
		return 0, nil, false
	}
	if it.ttl > 0 && time.Since(e.CreatedAt) > it.ttl {
		return 0, nil, false
	}
	return e.StatusCode, e.Body, true
}

// Store caches a response for the given idempotency key.
func (it *IdempotencyTracker) Store(key string, statusCode int, body []byte) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.ttl > 0 {
		for k, e := range it.entries {
			if time.Since(e.CreatedAt) > it.ttl {
				delete(it.entries, k)
			}
		}
	}
	it.entries[key] = idempotencyEntry{
		StatusCode: statusCode,
		Body:       bytes.Clone(body),
		CreatedAt:  time.Now(),
	}
}

// Len returns the number of cached keys.
func (it *IdempotencyTracker) Len() int {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return len(it.entries)
}

// Reset clears all tracked keys.
func (it *IdempotencyTracker) Reset() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.entries = make(map[string]idempotencyEntry)
}

// Middleware provides the common middleware for the server.
type Middleware struct {
	cfg        *Config
	logger     *slog.Logger
	ReqLog     *RequestLog
	Idempotent *IdempotencyTracker

	// serializes Idempotency so a retried request waits for the first one
	idemMu sync.Mutex
}

// NewMiddleware creates a new Middleware instance.
func NewMiddleware(cfg *Config, logger *slog.Logger) *Middleware {
	return &Middleware{
		cfg:        cfg,
		logger:     logger,
		ReqLog:     NewRequestLog(1000),
		Idempotent: NewIdempotencyTracker(24 * time.Hour),
	}
}

// CORS adds permissive CORS headers so the app's web front end can call the API.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Accept-Language, Content-Type, Idempotency-Key")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
	http.NewResponseController(sr.ResponseWriter).Flush()
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// RequestLog middleware captures request details into the ring buffer.
func (m *Middleware) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := RequestLogEntry{
			Timestamp:  start,
			Method:     r.Method,
			Path:       r.URL.Path,
			StatusCode: rec.statusCode,
			Duration:   time.Since(start),
			RequestID:  chimw.GetReqID(r.Context()),
		}
		if m.cfg.Verbose {
			entry.Headers = make(map[string]string)
			for k := range r.Header {
				entry.Headers[k] = r.Header.Get(k)
			}
		}
		m.ReqLog.Add(entry)

		m.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start),
			"request_id", entry.RequestID,
		)
	})
}

// responseRecorder captures response status and body for idempotency caching.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the cached response for a repeated Idempotency-Key on
// POST requests. Keys are scoped to the request path. Server errors are not
// cached so the client can retry them.
func (m *Middleware) Idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		scoped := r.URL.Path + "|" + key

		m.idemMu.Lock()
		defer m.idemMu.Unlock()

		if status, body, ok := m.Idempotent.Check(scoped); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(status)
			w.Write(body)
			return
		}
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.statusCode < http.StatusInternalServerError {
			m.Idempotent.Store(scoped, rec.statusCode, rec.body.Bytes())
		}
	})
}

package httpcore

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RequestLogEntry records one handled request.
type RequestLogEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	StatusCode int               `json:"status_code"`
	Duration   string            `json:"duration"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// RequestLog is a fixed-capacity ring buffer of recent requests, exposed
// through the admin control plane.
type RequestLog struct {
	mu      sync.Mutex
	entries []RequestLogEntry
	cap     int
}

// NewRequestLog creates a RequestLog holding at most capacity entries.
func NewRequestLog(capacity int) *RequestLog {
	return &RequestLog{cap: capacity}
}

// Add appends an entry, evicting the oldest when full.
func (rl *RequestLog) Add(e RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = append(rl.entries, e)
	if len(rl.entries) > rl.cap {
		rl.entries = rl.entries[len(rl.entries)-rl.cap:]
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make([]RequestLogEntry, len(rl.entries))
	copy(out, rl.entries)
	return out
}

// Clear drops all recorded entries.
func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = nil
}

// Middleware holds the middleware chain state.
type Middleware struct {
	cfg    *Config
	logger *slog.Logger
	ReqLog *RequestLog
}

// NewMiddleware creates the middleware set for a server.
func NewMiddleware(cfg *Config, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		cfg:    cfg,
		logger: logger,
		ReqLog: NewRequestLog(200),
	}
}

// CORS allows cross-origin requests and short-circuits preflight.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// RequestLog records each request into the ring buffer and, in verbose
// mode, captures request headers and emits a debug log line.
func (m *Middleware) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		entry := RequestLogEntry{
			Timestamp:  start,
			Method:     r.Method,
			Path:       r.URL.Path,
			StatusCode: sr.status,
			Duration:   time.Since(start).String(),
		}
		if m.cfg.Verbose {
			entry.Headers = make(map[string]string, len(r.Header))
			for k := range r.Header {
				entry.Headers[k] = r.Header.Get(k)
			}
			m.logger.Debug("request",
				"method", entry.Method,
				"path", entry.Path,
				"status", entry.StatusCode,
				"duration", entry.Duration,
			)
		}
		m.ReqLog.Add(entry)
	})
}

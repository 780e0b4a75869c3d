package middlewares

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// RequestCountPath is where the counter is read. Requests to it are the one
// path the counter middleware does not count.
const RequestCountPath = "/metrics/requests"

// RequestCounter counts every routed request for the lifetime of the process.
// It is created in main and injected where needed; the count is not persisted
// and starts at zero on every restart.
type RequestCounter struct {
	count atomic.Uint64
}

// NewRequestCounter creates a request counter
func NewRequestCounter() *RequestCounter {
	return &RequestCounter{}
}

// Count returns the current request count
func (c *RequestCounter) Count() uint64 {
	return c.count.Load()
}

// Middleware increments the counter before the handler runs. Reads of the
// counter itself are exempt, so observing the count does not change it.
func (c *RequestCounter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RequestCountPath {
			c.count.Add(1)
		}
		next.ServeHTTP(w, r)
	})
}

// Handler serves the counter read endpoint at RequestCountPath
// @Summary Get request count
// @Description Returns the number of requests handled since process start
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]uint64 "Current request count"
// @Router /metrics/requests [get]
func (c *RequestCounter) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]uint64{"request_count": c.Count()})
}

package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCount(t *testing.T, counter *RequestCounter) uint64 {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics/requests", nil)
	rec := httptest.NewRecorder()
	counter.Handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["request_count"]
}

func TestRequestCounter_Middleware(t *testing.T) {
	counter := NewRequestCounter()
	handler := counter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, uint64(0), readCount(t, counter))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, uint64(5), readCount(t, counter))
}

func TestRequestCounter_ReadDoesNotCount(t *testing.T) {
	counter := NewRequestCounter()
	handler := counter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))

	assert.Equal(t, uint64(1), readCount(t, counter))
	assert.Equal(t, uint64(1), readCount(t, counter))
	assert.Equal(t, uint64(1), readCount(t, counter))
}

func TestRequestCounter_ReadPathExemptFromMiddleware(t *testing.T) {
	counter := NewRequestCounter()
	handler := counter.Middleware(http.HandlerFunc(counter.Handler))

	// The middleware wraps the whole router, including the read endpoint
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, RequestCountPath, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, uint64(0), readCount(t, counter))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	assert.Equal(t, uint64(1), readCount(t, counter))
}

func TestRequestCounter_CountsErrorResponses(t *testing.T) {
	counter := NewRequestCounter()
	handler := counter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, uint64(1), readCount(t, counter))
}

func TestRequestCounter_ConcurrentRequests(t *testing.T) {
	counter := NewRequestCounter()
	handler := counter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	const workers = 10
	const perWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*perWorker), readCount(t, counter))
}

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canteenrush/canteenrush/internal/metrics"
)

// routeRecorder captures HTTP observations and discards everything else.
type routeRecorder struct {
	metrics.NoopRecorder
	mu     sync.Mutex
	routes []string
	status []int
}

func (r *routeRecorder) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route)
	r.status = append(r.status, status)
}

// TestLogging_SessionTokenNotLogged ensures bearer tokens never reach the logs.
func TestLogging_SessionTokenNotLogged(t *testing.T) {
	t.Parallel()

	token := "cs_" + strings.Repeat("ab", 32)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	wrapped := Logger(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, secret := range []string{token, "Bearer", "cs_"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output contains %q", secret)
		}
	}
}

// TestLogging_BasicFields verifies that expected non-sensitive fields are logged.
func TestLogging_BasicFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	wrapped := Logger(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set("User-Agent", "CanteenApp/2.0")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, field := range []string{
		`"method":"POST"`,
		`"path":"/api/v1/orders"`,
		`"status_code":201`,
		`"user_agent":"CanteenApp/2.0"`,
		`"route":"unmatched"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected log field %s not found in %s", field, out)
		}
	}
}

// TestLogging_RoutePattern verifies metrics are labelled by route pattern, not raw path.
func TestLogging_RoutePattern(t *testing.T) {
	t.Parallel()

	recorder := &routeRecorder{}
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	r.Use(Logger(logger, recorder))
	r.Post("/api/v1/vendor/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"01HX0001", "01HX0002"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/vendor/orders/"+id+"/status", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	want := []string{
		"POST /api/v1/vendor/orders/{id}/status",
		"POST /api/v1/vendor/orders/{id}/status",
		"GET unmatched",
	}
	if len(recorder.routes) != len(want) {
		t.Fatalf("recorded %d requests, want %d", len(recorder.routes), len(want))
	}
	for i := range want {
		if recorder.routes[i] != want[i] {
			t.Errorf("route[%d] = %q, want %q", i, recorder.routes[i], want[i])
		}
	}
	if recorder.status[2] != http.StatusNotFound {
		t.Errorf("unmatched status = %d, want 404", recorder.status[2])
	}
}

// TestLogging_StatusLevel verifies client errors warn and server errors error.
func TestLogging_StatusLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"success", http.StatusOK, "INFO"},
		{"created", http.StatusCreated, "INFO"},
		{"bad request", http.StatusBadRequest, "WARN"},
		{"conflict", http.StatusConflict, "WARN"},
		{"rate limited", http.StatusTooManyRequests, "WARN"},
		{"internal error", http.StatusInternalServerError, "ERROR"},
		{"unavailable", http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			wrapped := Logger(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			if !strings.Contains(buf.String(), `"level":"`+tt.wantLevel+`"`) {
				t.Errorf("expected level %s for status %d, got: %s", tt.wantLevel, tt.statusCode, buf.String())
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("default status", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())
		_, _ = wrapped.Write([]byte("hello"))
		if wrapped.status != http.StatusOK {
			t.Errorf("default status = %d, want %d", wrapped.status, http.StatusOK)
		}
	})

	t.Run("first WriteHeader wins", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())
		wrapped.WriteHeader(http.StatusCreated)
		wrapped.WriteHeader(http.StatusInternalServerError)
		if wrapped.status != http.StatusCreated {
			t.Errorf("status after double write = %d, want %d", wrapped.status, http.StatusCreated)
		}
	})
}

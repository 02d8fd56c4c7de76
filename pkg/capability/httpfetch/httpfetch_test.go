// SPDX-License-Identifier: Apache-2.0
package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jllopis/atomvm/pkg/resilience"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/telemetry"
)

func TestFetchDefaultsToGET(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	f := New(5 * time.Second)
	result, err := f.Fetch(context.Background(), server.URL, runtime.FetchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Fatalf("method = %q, want GET", gotMethod)
	}
	if result.Status != 200 || result.Body != `{"ok":true}` {
		t.Fatalf("result = %+v", result)
	}
}

func TestFetchSendsMethodHeadersAndBody(t *testing.T) {
	var gotMethod, gotHeader, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Test")
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	f := New(0)
	result, err := f.Fetch(context.Background(), server.URL, runtime.FetchOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Test": "yes"},
		Body:    "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost || gotHeader != "yes" || gotBody != "hello" {
		t.Fatalf("method=%q header=%q body=%q", gotMethod, gotHeader, gotBody)
	}
	if result.Status != http.StatusCreated {
		t.Fatalf("status = %d, want 201", result.Status)
	}
}

func TestFetchRetriesTransportErrorUpToMaxAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // closed before any request: every attempt hits a dead listener

	var attempts int32
	f := New(time.Second)
	f.retry = resilience.DefaultRetryConfig().WithMaxAttempts(2).WithInitialDelay(time.Millisecond)
	f.retry.IsRecoverable = func(err error) bool {
		atomic.AddInt32(&attempts, 1)
		return true
	}

	_, err := f.Fetch(context.Background(), server.URL, runtime.FetchOptions{})
	if err == nil {
		t.Fatal("expected an error because the server is closed")
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("attempts = %d, want 2", got)
	}
}

func TestFetchCircuitBreakerOpensAfterThreshold(t *testing.T) {
	f := New(time.Second)
	f.retry = resilience.DefaultRetryConfig().WithMaxAttempts(1)
	f.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 1,
		Timeout:          time.Minute,
	})

	_, err := f.Fetch(context.Background(), "http://127.0.0.1:0/unreachable", runtime.FetchOptions{})
	if err == nil {
		t.Fatal("expected first call to fail")
	}
	if f.breaker.State() != resilience.StateOpen {
		t.Fatalf("breaker state = %q, want open", f.breaker.State())
	}

	_, err = f.Fetch(context.Background(), "http://127.0.0.1:0/unreachable", runtime.FetchOptions{})
	if err == nil {
		t.Fatal("expected second call to be rejected by the open breaker")
	}
}

func TestFetchRecordsErrorMetricsWhenConfigured(t *testing.T) {
	metrics, err := telemetry.NewErrorMetrics(context.Background())
	if err != nil {
		t.Fatalf("NewErrorMetrics: %v", err)
	}

	f := New(time.Second)
	f.retry = resilience.DefaultRetryConfig().WithMaxAttempts(1)
	f.Metrics = metrics

	// Exercise the failure path with metrics attached; RecordErrorMetric/
	// RecordCircuitBreakerState must not panic and the call must still
	// surface the underlying fetch error.
	if _, err := f.Fetch(context.Background(), "http://127.0.0.1:0/unreachable", runtime.FetchOptions{}); err == nil {
		t.Fatal("expected an error")
	}
}

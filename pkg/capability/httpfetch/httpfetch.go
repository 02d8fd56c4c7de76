// SPDX-License-Identifier: Apache-2.0
// Package httpfetch implements runtime.Fetcher over net/http, in the same
// client-construction style as pkg/llm's Ollama provider: a single
// *http.Client with a fixed timeout, reused across calls. Outbound
// requests run through a retry-with-backoff policy and a circuit breaker
// per pkg/resilience, so a flaky or down upstream degrades the way the
// rest of the VM's host-boundary calls do. Errors and circuit breaker
// state transitions are reported through telemetry.ErrorMetrics when one
// is configured.
package httpfetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jllopis/atomvm/pkg/resilience"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/telemetry"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// Fetcher backs the http.fetch atom with a real outbound HTTP client.
type Fetcher struct {
	client  *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker

	// Metrics records error and circuit-breaker-state metrics per call.
	// Nil disables this (nil-receiver-safe on every method).
	Metrics *telemetry.ErrorMetrics
}

// New returns a Fetcher whose requests time out after timeout. A
// non-positive timeout defaults to 30s.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "http.fetch"}),
	}
}

// Fetch issues an HTTP request for url and reads the whole response body
// into the result. A blank method defaults to GET. Transient failures
// (anything resilience.DefaultRetryConfig considers recoverable) are
// retried with backoff; repeated failures trip the circuit breaker and
// fail fast until its cooldown elapses.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts runtime.FetchOptions) (*runtime.FetchResult, error) {
	wasOpen := f.breaker.State() == resilience.StateOpen

	var result *runtime.FetchResult
	err := f.breaker.Call(ctx, func() error {
		return f.retry.Do(ctx, func() error {
			res, err := f.doOnce(ctx, url, opts)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})

	f.Metrics.RecordCircuitBreakerState(ctx, "http.fetch", circuitBreakerStateCode(f.breaker.State()))
	if err != nil {
		f.Metrics.RecordErrorMetric(ctx, err, "http.fetch")
		return nil, err
	}
	if wasOpen {
		f.Metrics.RecordRecovery(ctx, vmerr.Internal)
	}
	return result, nil
}

// circuitBreakerStateCode maps a CircuitBreakerState to the
// 0=open/1=half-open/2=closed convention telemetry.ErrorMetrics records.
func circuitBreakerStateCode(state resilience.CircuitBreakerState) int64 {
	switch state {
	case resilience.StateOpen:
		return 0
	case resilience.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

func (f *Fetcher) doOnce(ctx context.Context, url string, opts runtime.FetchOptions) (*runtime.FetchResult, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &runtime.FetchResult{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    string(raw),
	}, nil
}

var _ runtime.Fetcher = (*Fetcher)(nil)

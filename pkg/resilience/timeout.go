// SPDX-License-Identifier: Apache-2.0
// Package resilience provides retry and circuit breaker patterns for the
// capability adapters a host wires behind the VM's atoms (http.fetch and
// friends), used to let a single flaky backend call degrade instead of
// failing a whole run outright.
package resilience

import (
	"context"
	"time"

	"github.com/jllopis/atomvm/pkg/vmerr"
)

// TimeoutConfig controls timeout behavior.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the operation.
	Duration time.Duration

	// ErrorOnTimeout is not consulted: WithTimeout and WithTimeoutResult
	// return a vmerr.Timeout error on timeout whatever its value.
	ErrorOnTimeout bool
}

// WithTimeout executes fn with a timeout boundary.
// Returns a vmerr.Timeout error if the deadline is exceeded.
func WithTimeout(ctx context.Context, config TimeoutConfig, fn func() error) error {
	if config.Duration == 0 {
		return fn()
	}

	ctx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return vmerr.New(vmerr.Timeout, "", "operation exceeded timeout", ctx.Err()).
			WithContext("timeout", config.Duration.String())
	case err := <-done:
		return err
	}
}

// WithTimeoutResult executes fn with a timeout boundary, returning both result and error.
func WithTimeoutResult(ctx context.Context, config TimeoutConfig, fn func() (interface{}, error)) (interface{}, error) {
	if config.Duration == 0 {
		return fn()
	}

	ctx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	type result struct {
		value interface{}
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value, err}
	}()

	select {
	case <-ctx.Done():
		return nil, vmerr.New(vmerr.Timeout, "", "operation exceeded timeout", ctx.Err()).
			WithContext("timeout", config.Duration.String())
	case res := <-done:
		return res.value, res.err
	}
}

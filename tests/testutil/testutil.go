// Package testutil wires the fulfillment services onto a real database for
// tests that need more than mocks.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RequireEventually polls condition until it holds or timeout passes
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
}

// RunConcurrently starts n calls of fn together and waits for all of them.
// The i-th error is the result of call i.
func RunConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	for i := 0; i < n; i++ {
		<-done
	}
	return errs
}

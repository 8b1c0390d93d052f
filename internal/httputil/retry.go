// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the source fetchers.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryDelay is the fixed wait between listing-request attempts. Tests
// override this to avoid real sleeps.
var RetryDelay = 5 * time.Second

const defaultMaxAttempts = 3

// DoWithRetry executes an HTTP request and retries on transport errors and
// non-2xx statuses, waiting RetryDelay between attempts. maxAttempts is the
// total number of attempts; when it is <= 0 the default (3) is used.
//
// Failed response bodies are drained and closed before retrying. If the
// request context is cancelled during a wait the context error is returned.
// After exhausting attempts the last transport error, or an error carrying
// the last HTTP status, is returned.
func DoWithRetry(client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(req.Context()))
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		default:
			lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt >= maxAttempts {
			return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(RetryDelay):
		}
	}
}

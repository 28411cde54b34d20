package sportapi

import (
	"context"
	"io"
	"net/http"
	"time"
)

// sendWithExpRetry executes send and, while shouldRetry approves and retries
// remain, sends again after an exponential backoff of base * 2^retry. The wait
// is abandoned when ctx is done.
func sendWithExpRetry(ctx context.Context,
	send func() (*http.Response, error),
	shouldRetry func(resp *http.Response, err error) bool,
	maxRetries int, base time.Duration,
) (*http.Response, error) {
	for retry := 0; retry <= maxRetries; retry++ {
		resp, err := send()

		if retry == maxRetries || ctx.Err() != nil || !shouldRetry(resp, err) {
			return resp, err
		}
		discard(resp)

		timer := time.NewTimer(base << retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, ErrMaxRetries
}

// retryable approves transport failures and 5xx answers.
func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode >= http.StatusInternalServerError
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

package dispatch

import (
	"context"

	"github.com/event-notify/internal/pkg/metrics"
)

// BulkResult is the aggregate outcome of a bulk dispatch.
// SuccessCount + FailureCount == Total.
type BulkResult struct {
	Total        int `json:"total"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

// BulkDispatch sends msg to every recipient concurrently and returns once all
// of them have completed. A blocked recipient counts as a success. Duplicate ids
// are dispatched as given. An empty list returns a zero result immediately.
func (d *Dispatcher) BulkDispatch(ctx context.Context, recipientIDs []string, msg Message) BulkResult {
	total := len(recipientIDs)
	if total == 0 {
		return BulkResult{}
	}
	metrics.BulkRecipients.Observe(float64(total))
	ctx = context.WithoutCancel(ctx)

	done := make(chan error, total)
	sem := make(chan struct{}, d.maxConcurrency)
	for _, recipientID := range recipientIDs {
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			done <- d.Dispatch(ctx, Request{RecipientID: recipientID, Message: msg})
		}()
	}

	failed := 0
	for range total {
		if err := <-done; err != nil {
			failed++
		}
	}
	return BulkResult{Total: total, SuccessCount: total - failed, FailureCount: failed}
}

package flow

import (
	"context"
	"strconv"

	"github.com/viant/pocketflow/internal/clock"
	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/event"
	"github.com/viant/pocketflow/tracing"
)

// executeWithRetry calls execute up to maxRetries times and hands the last
// error to the fallback.
func (n *Node) executeWithRetry(ctx context.Context, prep interface{}) (interface{}, error) {
	var err error
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		var result interface{}
		if result, err = n.execute(ctx, prep); err == nil {
			return result, nil
		}
		if attempt == n.maxRetries {
			break
		}
		progress.UpdateCtx(ctx, progress.Delta{Retries: 1})
		n.emit(ctx, &event.Context{EventType: event.NodeRetry, Attempt: attempt}, err, nil)
		tracing.SpanFromContext(ctx).AddEvent("retry", map[string]string{"attempt": strconv.Itoa(attempt), "error": err.Error()})
		if sleepErr := clock.Sleep(ctx, n.wait); sleepErr != nil {
			return nil, sleepErr
		}
	}
	progress.UpdateCtx(ctx, progress.Delta{Fallbacks: 1})
	n.emit(ctx, &event.Context{EventType: event.NodeFallback, Attempt: n.maxRetries}, err, nil)
	return n.fallback(ctx, prep, err)
}

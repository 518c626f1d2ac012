package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lookout/internal/logging"
	"lookout/internal/providers"
	"lookout/internal/services"
	"lookout/internal/services/llm"
)

// Invoker races one provider call against a deadline timer.
type Invoker struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewInvoker builds an invoker with the operator-configured deadline in
// seconds, floored at one second.
func NewInvoker(timeoutSeconds int, logger *slog.Logger) *Invoker {
	if timeoutSeconds < 1 {
		timeoutSeconds = 1
	}
	return &Invoker{timeout: time.Duration(timeoutSeconds) * time.Second, logger: logger}
}

type invokeResult struct {
	content string
	err     error
}

// Invoke issues the request and waits at most the configured deadline. The
// deadline abandons only the wait: the underlying call is detached from the
// request context and keeps running, its eventual result discarded. A hard
// cap at twice the deadline keeps an orphaned call from holding a
// connection forever.
func (i *Invoker) Invoke(ctx context.Context, endpoint providers.Endpoint, request llm.Request) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*i.timeout)
	results := make(chan invokeResult, 1)
	go func() {
		defer cancel()
		content, err := endpoint.Client.Complete(callCtx, request)
		results <- invokeResult{content: content, err: err}
	}()

	timer := time.NewTimer(i.timeout)
	defer timer.Stop()
	select {
	case result := <-results:
		if result.err != nil {
			return "", services.Wrap(services.ErrCall, "enhance", "invoke", fmt.Sprintf("provider %s", endpoint.Name), result.err)
		}
		return result.content, nil
	case <-timer.C:
		i.discardLate(ctx, endpoint.Name, results)
		return "", services.Wrap(services.ErrTimeout, "enhance", "invoke",
			fmt.Sprintf("provider %s exceeded %s deadline", endpoint.Name, i.timeout), nil)
	case <-ctx.Done():
		i.discardLate(ctx, endpoint.Name, results)
		return "", services.Wrap(services.ErrCall, "enhance", "invoke", "request abandoned", ctx.Err())
	}
}

// discardLate drains the abandoned call's eventual result so its goroutine
// can exit, and records the discard. Event fields come from the context; the
// invoker never sees the event itself.
func (i *Invoker) discardLate(ctx context.Context, provider string, results <-chan invokeResult) {
	go func() {
		result := <-results
		logging.WithContext(ctx, i.logger).Debug("late provider response discarded",
			logging.FieldProvider, provider,
			logging.Bool("errored", result.err != nil))
	}()
}

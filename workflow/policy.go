package workflow

import (
	"context"
	"fmt"
	"time"
)

// ExecutorPolicy configures per-executor execution behavior. The engine has
// no retry policy: a failing handler fails the run, and recovery belongs to
// the handler's own collaborator wrapper if desired.
type ExecutorPolicy struct {
	// Timeout bounds a single invocation of this executor's handler.
	// Zero means the runner's default handler timeout applies.
	Timeout time.Duration
}

func handlerTimeout(policy *ExecutorPolicy, defaultTimeout time.Duration) time.Duration {
	if policy != nil && policy.Timeout > 0 {
		return policy.Timeout
	}
	return defaultTimeout
}

// invokeWithTimeout runs one handler invocation under the executor's
// effective timeout. A handler that overruns observes cancellation through
// ctx at its next collaborator call.
func invokeWithTimeout(ctx context.Context, entry *executorEntry, defaultTimeout time.Duration, invoke func(context.Context) Result) Result {
	timeout := handlerTimeout(entry.policy, defaultTimeout)
	if timeout <= 0 {
		return invoke(ctx)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := invoke(timeoutCtx)
	if result.Err == nil && timeoutCtx.Err() == context.DeadlineExceeded {
		result.Err = fmt.Errorf("handler exceeded timeout of %v", timeout)
	}
	return result
}

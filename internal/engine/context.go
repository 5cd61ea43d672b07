package engine

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrQueryTimeout       = errors.New("query execution timeout")
	ErrMatchLimitExceeded = errors.New("term match limit exceeded")
)

const defaultCheckInterval = 256

// ExecutionContext tracks execution limits for one query. Cancellation
// and deadline come from the wrapped context.Context.
type ExecutionContext struct {
	ctx context.Context

	MaxTermsMatched int
	TermsMatched    int

	// checkCounter amortizes context checks.
	checkCounter  int
	checkInterval int

	TimedOut      bool
	LimitExceeded bool
}

// NewExecutionContext creates an execution context bound to ctx. maxTerms
// caps how many dictionary terms prefix expansion may match in total.
func NewExecutionContext(ctx context.Context, maxTerms int) *ExecutionContext {
	if maxTerms <= 0 {
		maxTerms = 1000
	}
	return &ExecutionContext{
		ctx:             ctx,
		MaxTermsMatched: maxTerms,
		checkInterval:   defaultCheckInterval,
	}
}

// Context returns the wrapped context.
func (ec *ExecutionContext) Context() context.Context { return ec.ctx }

// RemainingTerms returns how many more terms expansion may match.
func (ec *ExecutionContext) RemainingTerms() int {
	return ec.MaxTermsMatched - ec.TermsMatched
}

// AddTerms records n matched terms and fails once the limit is passed.
func (ec *ExecutionContext) AddTerms(n int) error {
	ec.TermsMatched += n
	if ec.TermsMatched > ec.MaxTermsMatched {
		ec.LimitExceeded = true
		return fmt.Errorf("%w: more than %d terms", ErrMatchLimitExceeded, ec.MaxTermsMatched)
	}
	return nil
}

// CheckLimits reports cancellation or an expired deadline. The context is
// consulted every checkInterval calls.
func (ec *ExecutionContext) CheckLimits() error {
	ec.checkCounter++
	if ec.checkCounter%ec.checkInterval != 0 {
		return nil
	}
	return ec.checkNow()
}

func (ec *ExecutionContext) checkNow() error {
	err := ec.ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ec.TimedOut = true
		return fmt.Errorf("%w: %w", ErrQueryTimeout, err)
	}
	return err
}

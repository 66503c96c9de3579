package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vidmerge/internal/logging"
)

// Attempt is one strategy in a fallback chain.
type Attempt struct {
	Name string
	Run  func(ctx context.Context) error
}

// AttemptResult records how an attempt ended.
type AttemptResult struct {
	Name   string
	OK     bool
	Reason string
}

// ChainError is returned when no attempt in a chain succeeded.
type ChainError struct {
	Results []AttemptResult
	errs    []error
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Results))
	for _, result := range e.Results {
		parts = append(parts, result.Name+": "+result.Reason)
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes every attempt failure to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	return e.errs
}

type abortError struct {
	err error
}

func (e *abortError) Error() string { return e.err.Error() }
func (e *abortError) Unwrap() error { return e.err }

// Abort marks err as terminal: the chain stops without trying later attempts.
func Abort(err error) error {
	if err == nil {
		return nil
	}
	return &abortError{err: err}
}

// RunChain tries attempts in order and stops at the first success. Failure
// reasons are collected; when every attempt fails, or one aborts, the
// returned *ChainError carries them all. Cancelling ctx always aborts; an
// attempt that merely timed out does not.
func RunChain(ctx context.Context, logger *slog.Logger, attempts []Attempt) ([]AttemptResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	results := make([]AttemptResult, 0, len(attempts))
	chainErr := &ChainError{}
	for _, attempt := range attempts {
		attemptCtx := logging.WithAttempt(ctx, attempt.Name)
		err := attempt.Run(attemptCtx)
		if err == nil {
			results = append(results, AttemptResult{Name: attempt.Name, OK: true})
			return results, nil
		}
		results = append(results, AttemptResult{Name: attempt.Name, Reason: err.Error()})
		chainErr.errs = append(chainErr.errs, fmt.Errorf("%s: %w", attempt.Name, err))

		var abort *abortError
		if errors.As(err, &abort) || ctx.Err() != nil {
			logging.WithContext(attemptCtx, logger).Debug("attempt aborted chain", logging.Error(err))
			break
		}
		logging.WithContext(attemptCtx, logger).Debug("attempt failed", logging.Error(err))
	}
	chainErr.Results = results
	if len(attempts) == 0 {
		return results, errors.New("no attempts configured")
	}
	return results, chainErr
}

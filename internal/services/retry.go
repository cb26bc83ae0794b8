package services

import (
	"context"
	"time"

	"github.com/j-veylop/aws-costs-tui/internal/logger"
	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/services/costexplorer"
)

// RetryPolicy controls how transient fetch failures are retried.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
}

// DefaultRetryPolicy makes three attempts, waiting 500ms then 1s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, InitialBackoff: 500 * time.Millisecond}

// retryingFetcher retries retryable errors with exponential backoff.
type retryingFetcher struct {
	next   costexplorer.Fetcher
	policy RetryPolicy
}

func (r retryingFetcher) FetchReport(ctx context.Context, period models.DateRange, groupBy string) (*models.CostReport, error) {
	attempts := r.policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := r.policy.InitialBackoff

	var lastErr error
	for i := range attempts {
		report, err := r.next.FetchReport(ctx, period, groupBy)
		if err == nil {
			return report, nil
		}
		lastErr = err

		if !costexplorer.IsRetryable(err) || i == attempts-1 {
			break
		}

		logger.Warn("retrying cost request", "period", period.String(), "attempt", i+1,
			"backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

// progressFetcher reports each request before it is made.
type progressFetcher struct {
	next   costexplorer.Fetcher
	before func(period models.DateRange)
}

func (p progressFetcher) FetchReport(ctx context.Context, period models.DateRange, groupBy string) (*models.CostReport, error) {
	p.before(period)
	return p.next.FetchReport(ctx, period, groupBy)
}

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v70/github"
)

// ErrRateLimitExceeded is returned when an operation keeps hitting rate
// limits after every allowed retry. It propagates to the caller instead of
// retrying forever.
var ErrRateLimitExceeded = errors.New("github: rate limit exceeded")

// errGraphQLRateLimited marks RATE_LIMITED errors from the raw GraphQL path,
// which never surface as go-github error types.
var errGraphQLRateLimited = errors.New("graphql rate limited")

// RetryPolicy is the bounded retry discipline shared by every outbound call:
// full-jitter exponential backoff, capped attempts.
type RetryPolicy struct {
	MaxAttempts  uint64
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
	}
}

// Do runs op, retrying transient and rate-limit errors with backoff up to
// MaxAttempts. Permanent errors stop immediately. An operation that is still
// rate-limited after the last attempt fails with ErrRateLimitExceeded.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var rateLimited bool

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		switch classify(err) {
		case errKindPermanent:
			return backoff.Permanent(err)
		case errKindRateLimit:
			rateLimited = true
			return err
		default:
			rateLimited = false
			return err
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 1 // full jitter
	bo := backoff.WithContext(backoff.WithMaxRetries(b, p.MaxAttempts-1), ctx)

	err := backoff.RetryNotify(wrapped, bo, func(err error, delay time.Duration) {
		logger.Debug("Retrying after error", "error", err, "delay", delay.String())
	})
	if err != nil && rateLimited {
		return fmt.Errorf("%w: %v", ErrRateLimitExceeded, err)
	}
	return err
}

type errKind int

const (
	errKindPermanent errKind = iota
	errKindRateLimit
	errKindTransient
)

func classify(err error) errKind {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return errKindRateLimit
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return errKindRateLimit
	}
	if errors.Is(err, errGraphQLRateLimited) {
		return errKindRateLimit
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		code := ghErr.Response.StatusCode
		switch {
		case code == http.StatusTooManyRequests:
			return errKindRateLimit
		case code == http.StatusForbidden && strings.Contains(strings.ToLower(ghErr.Message), "rate limit"):
			return errKindRateLimit
		case code >= http.StatusInternalServerError:
			return errKindTransient
		}
		return errKindPermanent
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errKindTransient
	}
	return errKindPermanent
}

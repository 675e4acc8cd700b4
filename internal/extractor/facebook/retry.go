package facebook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/guiyumin/fbdl/internal/extractor"
	"github.com/guiyumin/fbdl/internal/fetch"
)

// NoLinksFoundError means the page loaded but carried no SD or HD marker.
// Usually a login wall or a non-public video.
type NoLinksFoundError struct {
	URL string
}

func (e *NoLinksFoundError) Error() string {
	return "video link not found, make sure the video is public"
}

// ExhaustedRetriesError is returned once every attempt has failed
type ExhaustedRetriesError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *ExhaustedRetriesError) Error() string {
	return "unable to retrieve video information after multiple attempts"
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Err }

// retryable reports whether another attempt could succeed after err
func retryable(err error) bool {
	var noLinks *NoLinksFoundError
	return fetch.IsRetryable(err) || errors.As(err, &noLinks)
}

// FetchWithRetry loads and extracts rawURL, trying up to maxAttempts times
// with a constant delay in between. Attempts never overlap. Cancelling ctx
// stops the loop and returns ctx.Err(). Errors outside the page-load and
// missing-link kinds end the loop after the attempt that produced them.
func (e *Extractor) FetchWithRetry(ctx context.Context, rawURL string, maxAttempts int) (*extractor.DownloadResult, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		attempt int
		result    *extractor.DownloadResult
		lastErr   error
		permanent bool
	)

	operation := func() error {
		attempt++
		e.emit(extractor.Event{Kind: extractor.EventAttemptStarted, URL: rawURL, Attempt: attempt, MaxAttempts: maxAttempts})
		e.logger.Debug().Str("url", rawURL).Int("attempt", attempt).Int("max_attempts", maxAttempts).Msg("attempt started")

		res, err := e.extractPage(ctx, rawURL, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			lastErr = err
			e.logger.Warn().Err(err).Str("url", rawURL).Int("attempt", attempt).Msg("attempt failed")
			e.emit(extractor.Event{Kind: extractor.EventAttemptFailed, URL: rawURL, Attempt: attempt, MaxAttempts: maxAttempts, Err: err})
			if !retryable(err) {
				permanent = true
				return backoff.Permanent(err)
			}
			return err
		}
		result = res
		return nil
	}

	notify := func(err error, delay time.Duration) {
		e.emit(extractor.Event{Kind: extractor.EventWaiting, URL: rawURL, Attempt: attempt, MaxAttempts: maxAttempts, Delay: delay, Err: err})
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.retryDelay), uint64(maxAttempts-1)),
		ctx,
	)

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("extraction cancelled: %w", ctxErr)
		}
		if permanent {
			e.logger.Error().Err(lastErr).Str("url", rawURL).Int("attempt", attempt).Msg("extraction failed")
			return nil, fmt.Errorf("failed to extract video: %w", lastErr)
		}

		exhausted := &ExhaustedRetriesError{URL: rawURL, Attempts: attempt, Err: lastErr}
		e.logger.Error().Err(lastErr).Str("url", rawURL).Int("attempts", attempt).Msg("exhausted retries")
		e.emit(extractor.Event{Kind: extractor.EventExhausted, URL: rawURL, Attempt: attempt, MaxAttempts: maxAttempts, Err: exhausted})
		return nil, exhausted
	}

	e.logger.Info().Str("url", rawURL).Int("attempt", attempt).Int("links", len(result.Downloads)).Msg("extracted video links")
	e.emit(extractor.Event{Kind: extractor.EventSucceeded, URL: rawURL, Attempt: attempt, MaxAttempts: maxAttempts, Result: result})
	return result, nil
}

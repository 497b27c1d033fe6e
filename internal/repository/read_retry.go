package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/noah-isme/radio-schedule-api/pkg/errors"
)

const readRetryBackoff = 50 * time.Millisecond

// retryRead runs fn and repeats it up to retries more times while it fails
// with a transient error. Backoff grows linearly with the attempt number.
func retryRead(ctx context.Context, retries int, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || attempt >= retries || !appErrors.IsTransient(err) {
			return err
		}
		timer := time.NewTimer(time.Duration(attempt+1) * readRetryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// isMissing reports whether an id lookup matched nothing. An id Postgres cannot
// parse as a uuid matches nothing either.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || appErrors.IsInvalidText(err)
}

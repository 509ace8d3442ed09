// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package terminology

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy retries terminology requests that fail transiently.
// The delay starts at BaseDelay and doubles after every failed attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *slog.Logger
}

// Do runs request until it succeeds, fails with an error IsRetryable rejects,
// runs out of attempts or ctx ends. The last request error is returned.
// attrs identify the request in log records.
func (p RetryPolicy) Do(ctx context.Context, request func() error, attrs ...any) error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(attrs...)

	delay := p.BaseDelay
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := request()
		switch {
		case err == nil:
			if attempt > 1 {
				logger.Debug("terminology request recovered", "attempts", attempt)
			}
			return nil
		case !IsRetryable(err):
			return err
		case attempt >= p.MaxAttempts:
			logger.Warn("terminology request gave up", "attempts", attempt, "err", err)
			return err
		}

		logger.Debug("retrying terminology request", "attempt", attempt, "delay", delay, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

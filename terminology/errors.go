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
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRequestFailed indicates a terminology server request that did not succeed.
	ErrRequestFailed = errors.New("terminology request failed")
)

// StatusError is a non-success HTTP response from the terminology server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("terminology server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("terminology server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns ErrRequestFailed.
func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// IsRetryable reports whether err is worth retrying. Server errors and
// throttling responses are retryable; other status errors are not.
// Errors that are not status errors (transport failures) are retryable.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}

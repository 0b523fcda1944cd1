package rewriter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimited matches any RateLimitError via errors.Is.
var ErrRateLimited = errors.New("rewrite generator rate limited")

const defaultRetryAfter = time.Minute

// maxErrorBody caps how much of a provider's error payload ends up in the message.
const maxErrorBody = 512

// RateLimitError reports that a rewrite provider refused a request with 429.
// Provider is "all" when every generator behind a FallbackGenerator is cooling down.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rewrite provider %s rate limited, retry in %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// NewRateLimitError builds a RateLimitError; a non-positive retryAfter becomes one minute.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

// ParseRetryAfter reads a Retry-After value in either delta-seconds or
// HTTP-date form. Unparseable, empty and past values yield 0.
func ParseRetryAfter(val string, now time.Time) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	if d := at.Sub(now); d > 0 {
		return d.Round(time.Second)
	}
	return 0
}

// ResponseError turns a non-200 provider response into an error. 429s come
// back as *RateLimitError carrying the provider's Retry-After hint.
func ResponseError(provider string, resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	err := fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, msg)
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(provider, err, ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}
	return err
}

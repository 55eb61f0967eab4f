package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"hsrcal/internal/config"
	"hsrcal/internal/models"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const (
	defaultMaxBytes = 32 << 20
	userAgent       = "descfmt/1.0"
)

// Loader reads event exports from local files or URLs with config-driven
// retry logic.
type Loader struct {
	client      *http.Client
	retryPolicy *config.RetryPolicy
	attempts    *AttemptLog
	maxBytes    int64
}

// NewLoader creates a loader with the default retry policy.
func NewLoader() *Loader {
	return NewLoaderWithConfig(&config.Default().Formatter.Retry)
}

// NewLoaderWithConfig creates a loader with a custom retry policy.
func NewLoaderWithConfig(retryPolicy *config.RetryPolicy) *Loader {
	return &Loader{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy: retryPolicy,
		attempts:    NewAttemptLog(),
		maxBytes:    defaultMaxBytes,
	}
}

// Attempts returns the log of every URL fetch made by this loader.
func (l *Loader) Attempts() *AttemptLog {
	return l.attempts
}

// Load reads and decodes one source. Remote sources try the primary URL and
// then each backup URL in order.
func (l *Loader) Load(ctx context.Context, src config.SourceConfig) ([]models.Event, error) {
	if src.IsLocalFile() {
		data, err := l.ReadFile(src.File)
		if err != nil {
			return nil, err
		}

		return decodeSource(src, src.File, data)
	}

	var lastErr error

	for _, u := range src.GetAllURLs() {
		if u == "" {
			continue
		}

		data, err := l.Fetch(ctx, u)
		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				break
			}

			continue
		}

		name := u
		if parsed, err := url.Parse(u); err == nil {
			name = parsed.Path
		}

		return decodeSource(src, name, data)
	}

	return nil, fmt.Errorf("failed to load source %s: %w", src.Name, lastErr)
}

func decodeSource(src config.SourceConfig, name string, data []byte) ([]models.Event, error) {
	format := src.Format
	if format == "" {
		format = DetectFormat(name, data)
	}

	events, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	return events, nil
}

// ReadFile reads content from a local file path.
func (l *Loader) ReadFile(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file %s: %w", filePath, err)
	}

	return content, nil
}

// Fetch downloads rawURL, retrying transport errors and temporary failures
// with exponential backoff.
func (l *Loader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= l.retryPolicy.MaxAttempts; attempt++ {
		if err := sleep(ctx, l.retryPolicy.GetRetryDelay(attempt)); err != nil {
			return nil, err
		}

		start := time.Now()
		body, status, retry, err := l.fetchOnce(ctx, rawURL)
		l.attempts.Record(rawURL, status, err, time.Since(start))

		if err == nil {
			return body, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, l.retryPolicy.MaxAttempts, err)

		if !retry {
			break
		}
	}

	return nil, lastErr
}

// fetchOnce performs one GET and reports the status code and whether a
// failure is worth retrying.
func (l *Loader) fetchOnce(ctx context.Context, rawURL string) ([]byte, int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/calendar;q=0.9, */*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, ctx.Err() == nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, isRetryableStatus(resp.StatusCode),
			fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return nil, resp.StatusCode, true, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableStatus reports whether a status is worth another attempt.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}

	return statusCode >= http.StatusInternalServerError
}

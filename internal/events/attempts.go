package events

import (
	"fmt"
	"sync"
	"time"

	"hsrcal/internal/logger"
)

// AttemptResult records the result of a URL fetch attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// AttemptLog collects fetch attempts per URL in the order URLs were first tried.
// It is safe for concurrent use.
type AttemptLog struct {
	mu   sync.Mutex
	urls []string
	log  map[string][]AttemptResult
}

// NewAttemptLog creates an empty attempt log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{log: make(map[string][]AttemptResult)}
}

// Record records the result of a fetch attempt.
func (al *AttemptLog) Record(url string, statusCode int, err error, duration time.Duration) {
	al.mu.Lock()
	defer al.mu.Unlock()

	if _, ok := al.log[url]; !ok {
		al.urls = append(al.urls, url)
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	al.log[url] = append(al.log[url], AttemptResult{
		URL:        url,
		Attempt:    len(al.log[url]) + 1,
		Success:    err == nil,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// Results returns the attempts made for url.
func (al *AttemptLog) Results(url string) []AttemptResult {
	al.mu.Lock()
	defer al.mu.Unlock()

	return append([]AttemptResult(nil), al.log[url]...)
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	URLAttempts        map[string]int
	TotalURLs          int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// Stats returns statistics about fetch attempts. A URL counts as successful
// when any of its attempts succeeded.
func (al *AttemptLog) Stats() AttemptStats {
	al.mu.Lock()
	defer al.mu.Unlock()

	stats := AttemptStats{
		TotalURLs:   len(al.urls),
		URLAttempts: make(map[string]int, len(al.urls)),
	}

	for url, results := range al.log {
		stats.URLAttempts[url] = len(results)
		stats.TotalAttempts += len(results)

		urlSuccess := false

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				urlSuccess = true
			} else {
				stats.FailedAttempts++
			}
		}

		if urlSuccess {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalURLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}

// LogSummary logs every attempt and the overall stats. Nothing is logged when
// no URL was fetched.
func (al *AttemptLog) LogSummary(l *logger.Logger) {
	al.mu.Lock()
	urls := append([]string(nil), al.urls...)
	al.mu.Unlock()

	if len(urls) == 0 {
		return
	}

	l.Info("📊 Fetch Attempt Summary:")

	for i, url := range urls {
		results := al.Results(url)

		statusEmoji := "❌"
		if results[len(results)-1].Success {
			statusEmoji = "✅"
		}

		l.Info(fmt.Sprintf("%d. %s %s (%d attempts)", i+1, statusEmoji, url, len(results)))

		for _, result := range results {
			if result.Success {
				continue
			}

			l.Debug("attempt failed",
				"url", url,
				"attempt", result.Attempt,
				"status", result.StatusCode,
				"error", result.Error,
				"duration", result.Duration,
			)
		}
	}

	l.Info(fmt.Sprintf("Overall: %s", al.Stats()))
}

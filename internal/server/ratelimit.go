package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter manages per-client request rate limits and daily quotas.
// Minute and hour limits count requests in fixed windows starting at the
// client's first request in that window.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int
	maxTextPerDay     int64

	clients map[string]*ClientUsage
	now     func() time.Time
}

// ClientUsage tracks usage for one client.
type ClientUsage struct {
	MinuteStart    time.Time
	MinuteRequests int
	HourStart      time.Time
	HourRequests   int
	Day            time.Time // local midnight of the tracked day
	DayRequests    int
	DayBytes       int64
}

// NewRateLimiter creates a new rate limiter with the given limits.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int, maxTextPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		maxTextPerDay:     maxTextPerDay,
		clients:           make(map[string]*ClientUsage),
		now:               time.Now,
	}
}

// CheckRateLimit admits or rejects one request of dataSize bytes from
// clientID. Rejected requests do not count against any limit.
func (rl *RateLimiter) CheckRateLimit(clientID string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &ClientUsage{}
		rl.clients[clientID] = usage
	}
	rollWindows(usage, now)

	if rl.requestsPerMinute > 0 && usage.MinuteRequests >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: usage.MinuteStart.Add(time.Minute).Sub(now),
		}
	}
	if rl.requestsPerHour > 0 && usage.HourRequests >= rl.requestsPerHour {
		return &RateLimitError{
			Type:       "hour",
			Limit:      rl.requestsPerHour,
			RetryAfter: usage.HourStart.Add(time.Hour).Sub(now),
		}
	}

	resets := usage.Day.AddDate(0, 0, 1)
	if rl.maxRequestsPerDay > 0 && usage.DayRequests >= rl.maxRequestsPerDay {
		return &QuotaExceededError{
			Type:   "requests",
			Limit:  int64(rl.maxRequestsPerDay),
			Used:   int64(usage.DayRequests),
			Resets: resets,
		}
	}
	if rl.maxTextPerDay > 0 && usage.DayBytes+dataSize > rl.maxTextPerDay {
		return &QuotaExceededError{
			Type:   "data",
			Limit:  rl.maxTextPerDay,
			Used:   usage.DayBytes,
			Resets: resets,
		}
	}

	usage.MinuteRequests++
	usage.HourRequests++
	usage.DayRequests++
	usage.DayBytes += dataSize
	return nil
}

func rollWindows(usage *ClientUsage, now time.Time) {
	if now.Sub(usage.MinuteStart) >= time.Minute {
		usage.MinuteStart = now
		usage.MinuteRequests = 0
	}
	if now.Sub(usage.HourStart) >= time.Hour {
		usage.HourStart = now
		usage.HourRequests = 0
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.Equal(usage.Day) {
		usage.Day = day
		usage.DayRequests = 0
		usage.DayBytes = 0
	}
}

// Usage returns a copy of the usage recorded for clientID.
func (rl *RateLimiter) Usage(clientID string) ClientUsage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if usage, ok := rl.clients[clientID]; ok {
		return *usage
	}
	return ClientUsage{}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute" or "hour"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a daily quota violation.
type QuotaExceededError struct {
	Type   string    // "requests" or "data"
	Limit  int64     // the limit that was exceeded
	Used   int64     // current usage
	Resets time.Time // when the quota resets
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}

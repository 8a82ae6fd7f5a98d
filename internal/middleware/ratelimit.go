package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/charlesng35/otpdash/pkg/response"
)

// RateStore counts requests per key within fixed windows.
type RateStore interface {
	Increment(key string, window time.Duration) (count int, resetIn time.Duration)
}

// MemoryRateStore provides process-local rate limiting. It is concurrency-safe.
type MemoryRateStore struct {
	mu    sync.Mutex
	data  map[string]*memoryCounter
	clock func() time.Time
}

type memoryCounter struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateStore constructs an in-memory rate store. A nil clock uses time.Now.
func NewMemoryRateStore(clock func() time.Time) *MemoryRateStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryRateStore{
		data:  make(map[string]*memoryCounter),
		clock: clock,
	}
}

// Increment bumps the counter for key and reports the count plus time until the window resets.
func (s *MemoryRateStore) Increment(key string, window time.Duration) (int, time.Duration) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.data[key]
	if !ok || !now.Before(counter.windowEnd) {
		counter = &memoryCounter{windowEnd: now.Add(window)}
		s.data[key] = counter
	}
	counter.count++

	return counter.count, counter.windowEnd.Sub(now)
}

// Prune drops counters whose window has closed and returns how many were removed.
func (s *MemoryRateStore) Prune() int {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, counter := range s.data {
		if !now.Before(counter.windowEnd) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

// RateLimit limits requests per (client IP, route) within a fixed window.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		count, resetIn := store.Increment(c.ClientIP()+"|"+c.FullPath(), window)
		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > maxRequests {
			response.Error(c, apperrors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}

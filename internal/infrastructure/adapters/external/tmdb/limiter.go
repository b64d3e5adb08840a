package tmdb

import (
	"sync"

	"golang.org/x/time/rate"
)

var (
	sharedMu      sync.Mutex
	sharedLimiter *rate.Limiter
)

// SharedLimiter returns the process-wide TMDb request gate. Every client and
// every concurrent batch must draw from it. A later call with a different
// rate retunes the existing gate.
func SharedLimiter(rps float64) *rate.Limiter {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedLimiter == nil {
		sharedLimiter = rate.NewLimiter(rate.Limit(rps), 1)
	} else if sharedLimiter.Limit() != rate.Limit(rps) {
		sharedLimiter.SetLimit(rate.Limit(rps))
	}
	return sharedLimiter
}

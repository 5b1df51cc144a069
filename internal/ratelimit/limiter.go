package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing provider calls with a token bucket. The fetch loop
// is strictly sequential, so this only spaces requests out; it never admits
// more than one in flight.
type Limiter struct {
	bucket *rate.Limiter
}

type Config struct {
	RequestsPerSecond float64
	Burst             int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		Burst:             1,
	}
}

func New(config Config) *Limiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if config.Burst < 1 {
		config.Burst = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// Wait blocks until the next request may go out. A nil limiter admits
// everything immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}

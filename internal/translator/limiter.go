package translator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limited spaces calls to the wrapped service so that no more than the
// configured number of requests start per minute. Waiting never turns into an
// extra upstream call.
type Limited struct {
	Service
	limiter *rate.Limiter
}

// WithRateLimit wraps svc with a limiter allowing perMinute requests per
// minute. perMinute <= 0 returns svc unchanged.
func WithRateLimit(svc Service, perMinute int) Service {
	if perMinute <= 0 {
		return svc
	}
	every := time.Minute / time.Duration(perMinute)
	return &Limited{Service: svc, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (l *Limited) Translate(ctx context.Context, fragment, instructions, glossary string) Result {
	if err := l.limiter.Wait(ctx); err != nil {
		res := Failed(KindUnexpected, fmt.Errorf("rate limiter: %w", err))
		res.Service = l.Name()
		return res
	}
	return l.Service.Translate(ctx, fragment, instructions, glossary)
}

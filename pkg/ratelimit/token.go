package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// TokenLimiter spends a per-minute budget of model tokens. The budget refills
// continuously, so a burst of the full minute is available after an idle
// minute.
type TokenLimiter struct {
	limiter *rate.Limiter
}

func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	if tokensPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	perSecond := rate.Limit(float64(tokensPerMinute) / time.Minute.Seconds())
	return &TokenLimiter{limiter: rate.NewLimiter(perSecond, tokensPerMinute)}
}

// Wait blocks until tokens are available or ctx is done. Requests larger than
// the whole budget are capped so they cannot wait forever.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	if burst := l.limiter.Burst(); l.limiter.Limit() != rate.Inf && tokens > burst {
		tokens = burst
	}
	return l.limiter.WaitN(ctx, tokens)
}

// Remaining reports the whole tokens currently available.
func (l *TokenLimiter) Remaining() int {
	if l.limiter.Limit() == rate.Inf {
		return -1
	}
	return int(l.limiter.Tokens())
}

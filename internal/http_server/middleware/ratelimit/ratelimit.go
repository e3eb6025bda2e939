package ratelimit

import (
	"net/http"
	"time"

	resp "finlet/internal/lib/api/response"

	"github.com/go-chi/httprate"
)

// CounterFactory returns a shared counter for the named limiter. A nil
// factory keeps counts in process memory.
type CounterFactory func(name string) httprate.LimitCounter

type Limits struct {
	counters CounterFactory
}

func New(counters CounterFactory) *Limits {
	return &Limits{counters: counters}
}

func (l *Limits) SignIn() func(http.Handler) http.Handler {
	return l.limitByIP("sign-in", 10, 5*time.Minute)
}

func (l *Limits) SignUp() func(http.Handler) http.Handler {
	return l.limitByIP("sign-up", 5, time.Hour)
}

func (l *Limits) SendVerificationEmail() func(http.Handler) http.Handler {
	return l.limitByIP("send-verification-email", 3, time.Hour)
}

func (l *Limits) VerifyEmail() func(http.Handler) http.Handler {
	return l.limitByIP("verify-email", 10, 10*time.Minute)
}

func (l *Limits) limitByIP(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	opts := []httprate.Option{
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(tooManyRequests),
	}
	if l != nil && l.counters != nil {
		opts = append(opts, httprate.WithLimitCounter(l.counters(name)))
	}

	return httprate.Limit(limit, window, opts...)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	resp.JSON(w, r, http.StatusTooManyRequests, resp.ErrorWithCode("Too Many Requests", "RATE_LIMITED"))
}

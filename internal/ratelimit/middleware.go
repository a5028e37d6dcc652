package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/toko-pricing/internal/common"
)

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Store   limiter.Store
	Config  Config
	OnError func(error)
}

// KeyByClientIP keys limits on the caller address.
func KeyByClientIP(r *http.Request) string {
	return common.ClientIP(r)
}

// Middleware implements the http.Handler middleware interface. A handler
// without a store or with a non-positive limit passes every request.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Store == nil || h.Config.Max <= 0 || h.Config.Window <= 0 {
		return next
	}
	keyFn := h.Config.Key
	if keyFn == nil {
		keyFn = KeyByClientIP
	}
	lim := limiter.New(h.Store, limiter.Rate{Period: h.Config.Window, Limit: int64(h.Config.Max)})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := lim.Get(r.Context(), keyFn(r))
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if res.Reached {
			retryAfter := int(time.Until(time.Unix(res.Reset, 0)).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

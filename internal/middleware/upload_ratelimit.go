package middleware

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/moodjournal-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Journal create rate limit: per-user, since every create stores an image.
// 10 req/min, burst 5. Requests without an authenticated user fall back to the IP.

const (
	uploadRateLimitRPS   = 10.0 / 60
	uploadRateLimitBurst = 5
)

// UploadRateLimit throttles POST requests on the route it wraps. Mount it
// after RequireAuth so the caller is known.
func UploadRateLimit() func(http.Handler) http.Handler {
	registry := newLimiterRegistry(rate.Limit(uploadRateLimitRPS), uploadRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientip.RealClientIP(r)
			if user, ok := UserFromContext(r.Context()); ok {
				key = "user:" + strconv.FormatInt(user.ID, 10)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(uploadRateLimitBurst))
			if !registry.get(key).Allow() {
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeTooManyRequests(w, "Too many journal uploads. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

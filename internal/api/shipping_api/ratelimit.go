package shipping_api

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// calculateLimit is a fixed one-minute window per client IP. Limiter failures let the
// request through.
func (a *ShippingAPI) calculateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.rl == nil || a.calcPerMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now().UTC()
		allowed, n, err := a.rl.AllowPerMinute(r.Context(), "calculate:"+clientIP(r), a.calcPerMinute, now)
		if err != nil {
			slog.Warn("rate limiter unavailable", "req_id", reqID(r.Context()), "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(60-now.Second()))
			slog.Warn("calculate rate limit exceeded", "client", clientIP(r), "count", n)
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on middleware.RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIP кладёт голый адрес без порта
		return r.RemoteAddr
	}
	return host
}

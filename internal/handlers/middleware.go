package handlers

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// senderLimiter throttles inbound webhooks per sender so one noisy number
// cannot starve the LLM quota for everyone else.
type senderLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newSenderLimiter() *senderLimiter {
	return &senderLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(2 * time.Second),
		burst:    5,
	}
}

func (s *senderLimiter) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.limiters[key] = l
	return l
}

// RateLimit is chi middleware keyed on the Twilio sender, falling back to
// the remote address for non-form requests.
func RateLimit(next http.Handler) http.Handler {
	limiter := newSenderLimiter()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := normalizePhone(r.FormValue("From"))
		if key == "" {
			key = r.RemoteAddr
		}
		if !limiter.get(key).Allow() {
			http.Error(w, "Too many messages, slow down", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

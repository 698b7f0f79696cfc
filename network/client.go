// Package network provides the HTTP clients shared by every catalog adapter.
package network

import (
	"net/http"
	"sync"
	"time"

	"github.com/mcmeskajr-prog/trackall/constant"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// Client is the default client. Requests are throttled per host.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: Throttle(newTransport()),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 16
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}

// Throttle wraps base so that every host gets its own token bucket sized by network.rate_limit.
// The limit is read when a host is first contacted.
func Throttle(base http.RoundTripper) http.RoundTripper {
	return &throttled{base: base, limiters: make(map[string]*rate.Limiter)}
}

type throttled struct {
	base     http.RoundTripper
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (t *throttled) limiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limiters[host]; ok {
		return l
	}

	limit := rate.Inf
	if perSecond := viper.GetInt(key.NetworkRateLimit); perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	l := rate.NewLimiter(limit, 1)
	t.limiters[host] = l
	return l
}

func (t *throttled) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter(req.URL.Host).Wait(req.Context()); err != nil {
		return nil, err
	}

	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}

	return t.base.RoundTrip(req)
}

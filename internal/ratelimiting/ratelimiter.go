package ratelimiting

import (
	"net"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

const defaultIdleTTL = 30 * time.Minute

type Options struct {
	RefillPerSecond float64
	Burst           int

	// IdleTTL is how long an unused bucket is kept. Defaults to 30 minutes.
	IdleTTL time.Duration
}

// Buckets keeps one token bucket per key.
type Buckets struct {
	buckets *ttlcache.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewBuckets starts the expiry loop of idle buckets; Close stops it.
func NewBuckets(opts Options) *Buckets {
	idleTTL := opts.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}

	buckets := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](idleTTL),
	)
	go buckets.Start()

	return &Buckets{
		buckets: buckets,
		limit:   rate.Limit(opts.RefillPerSecond),
		burst:   opts.Burst,
	}
}

// Allow takes a token from the key's bucket.
func (that *Buckets) Allow(key string) bool {
	item := that.buckets.Get(key)
	if item == nil {
		item, _ = that.buckets.GetOrSet(key, rate.NewLimiter(that.limit, that.burst))
	}

	return item.Value().Allow()
}

func (that *Buckets) Close() {
	that.buckets.Stop()
}

// KeyFunc names the bucket a request is charged to.
type KeyFunc func(r *http.Request) string

type allower interface {
	Allow(key string) bool
}

// RequestLimiter charges requests to the bucket chosen by its KeyFunc.
type RequestLimiter struct {
	buckets allower
	keyFor  KeyFunc
}

func NewRequestLimiter(buckets allower, keyFor KeyFunc) *RequestLimiter {
	return &RequestLimiter{
		buckets: buckets,
		keyFor:  keyFor,
	}
}

// Allow reports whether r may proceed, together with the key it was charged to.
func (that *RequestLimiter) Allow(r *http.Request) (string, bool) {
	key := that.keyFor(r)

	return key, that.buckets.Allow(key)
}

// ClientAddr keys requests by the remote address without its port, so every
// connection from one scorekeeper's device shares a bucket.
func ClientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return "client:" + host
}

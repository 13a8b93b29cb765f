package overload

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/domain/customer"
	"go.uber.org/zap"
)

// Config holds traffic shedding thresholds
type Config struct {
	Enabled          bool
	GuestRequests    int           // allowed guest requests per IP per window
	BotRequests      int           // allowed bot requests per window
	NewGuestRequests int           // allowed guest creations per IP per window
	Window           time.Duration // sliding window size
}

// Policy sheds guest and bot traffic under load using per-key token
// buckets. Guest and new-guest budgets are tracked per client IP; the bot
// budget is global since crawlers rotate addresses freely.
type Policy struct {
	config   Config
	guests   *bucketSet
	bots     *bucketSet
	creation *bucketSet
	logger   *zap.Logger
}

// NewPolicy creates a new overload policy
func NewPolicy(config Config, logger *zap.Logger) *Policy {
	return &Policy{
		config:   config,
		guests:   newBucketSet(config.GuestRequests, config.Window),
		bots:     newBucketSet(config.BotRequests, config.Window),
		creation: newBucketSet(config.NewGuestRequests, config.Window),
		logger:   logger,
	}
}

// DenyGuest reports whether guest traffic from the request's address is
// over budget.
func (p *Policy) DenyGuest(ctx context.Context, req *workcontext.Request, c *customer.Customer) bool {
	if !p.config.Enabled {
		return false
	}
	if !p.guests.allow(req.IP) {
		p.logger.Debug("Guest request budget exhausted", zap.String("ip", req.IP))
		return true
	}
	return false
}

// DenyBot reports whether crawler traffic is over budget.
func (p *Policy) DenyBot(ctx context.Context, req *workcontext.Request, userAgent string) bool {
	if !p.config.Enabled {
		return false
	}
	if !p.bots.allow("bots") {
		p.logger.Debug("Bot request budget exhausted", zap.String("user_agent", userAgent))
		return true
	}
	return false
}

// ForbidNewGuest reports whether the request's address has created too
// many guest records recently.
func (p *Policy) ForbidNewGuest(ctx context.Context, req *workcontext.Request) bool {
	if !p.config.Enabled {
		return false
	}
	if !p.creation.allow(req.IP) {
		p.logger.Debug("Guest creation budget exhausted", zap.String("ip", req.IP))
		return true
	}
	return false
}

// bucketSet is a windowed token bucket keyed by client
type bucketSet struct {
	mu      sync.Mutex
	clients map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

func newBucketSet(limit int, window time.Duration) *bucketSet {
	bs := &bucketSet{
		clients: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go bs.cleanup(window * 2)
	return bs
}

func (bs *bucketSet) cleanup(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for range ticker.C {
		bs.mu.Lock()
		now := time.Now()
		for key, b := range bs.clients {
			if now.Sub(b.lastReset) > bs.window*2 {
				delete(bs.clients, key)
			}
		}
		bs.mu.Unlock()
	}
}

func (bs *bucketSet) allow(key string) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	now := time.Now()
	b, exists := bs.clients[key]

	if !exists {
		bs.clients[key] = &bucket{
			tokens:    bs.limit - 1,
			lastReset: now,
		}
		return true
	}

	if now.Sub(b.lastReset) >= bs.window {
		b.tokens = bs.limit - 1
		b.lastReset = now
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

var _ workcontext.OverloadPolicy = (*Policy)(nil)

package overload

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Enabled:          true,
		GuestRequests:    3,
		BotRequests:      2,
		NewGuestRequests: 1,
		Window:           time.Minute,
	}
}

func TestPolicy_DisabledAllowsEverything(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	p := NewPolicy(cfg, zap.NewNop())
	req := &workcontext.Request{IP: "198.51.100.1"}

	for i := 0; i < 100; i++ {
		assert.False(t, p.DenyGuest(context.Background(), req, nil))
		assert.False(t, p.DenyBot(context.Background(), req, "bot"))
		assert.False(t, p.ForbidNewGuest(context.Background(), req))
	}
}

func TestPolicy_GuestBudgetPerIP(t *testing.T) {
	p := NewPolicy(testConfig(), zap.NewNop())
	req := &workcontext.Request{IP: "198.51.100.1"}
	other := &workcontext.Request{IP: "198.51.100.2"}

	for i := 0; i < 3; i++ {
		assert.False(t, p.DenyGuest(context.Background(), req, nil))
	}
	assert.True(t, p.DenyGuest(context.Background(), req, nil))

	// A different address has its own budget.
	assert.False(t, p.DenyGuest(context.Background(), other, nil))
}

func TestPolicy_BotBudgetIsGlobal(t *testing.T) {
	p := NewPolicy(testConfig(), zap.NewNop())

	a := &workcontext.Request{IP: "198.51.100.1"}
	b := &workcontext.Request{IP: "198.51.100.2"}

	assert.False(t, p.DenyBot(context.Background(), a, "crawler-a"))
	assert.False(t, p.DenyBot(context.Background(), b, "crawler-b"))
	assert.True(t, p.DenyBot(context.Background(), a, "crawler-c"))
}

func TestPolicy_NewGuestStricterThanGuest(t *testing.T) {
	p := NewPolicy(testConfig(), zap.NewNop())
	req := &workcontext.Request{IP: "198.51.100.1"}

	assert.False(t, p.ForbidNewGuest(context.Background(), req))
	assert.True(t, p.ForbidNewGuest(context.Background(), req))

	// The ordinary guest budget is unaffected.
	assert.False(t, p.DenyGuest(context.Background(), req, nil))
}

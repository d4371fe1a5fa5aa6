package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// ResendCooldown allows one verification resend per address per window.
// Key format: verify:resend:<email>
type ResendCooldown struct {
	client *redis.Client
	window time.Duration
}

// NewResendCooldown wraps client. A non-positive window disables the cooldown.
func NewResendCooldown(client *redis.Client, window time.Duration) *ResendCooldown {
	return &ResendCooldown{client: client, window: window}
}

var _ ports.ResendLimiter = (*ResendCooldown)(nil)

// Allow claims the window for email. It reports false while an earlier claim
// has not expired yet.
func (c *ResendCooldown) Allow(ctx context.Context, email string) (bool, error) {
	if c.window <= 0 || c.client == nil {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, c.key(email), "1", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("resend cooldown: %w", err)
	}
	return ok, nil
}

// Release drops the claim for email so the next resend is not throttled.
func (c *ResendCooldown) Release(ctx context.Context, email string) error {
	if c.window <= 0 || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(email)).Err(); err != nil {
		return fmt.Errorf("resend cooldown: %w", err)
	}
	return nil
}

func (c *ResendCooldown) key(email string) string {
	return fmt.Sprintf("verify:resend:%s", email)
}

// Package policy resolves retry-gate tuning at evaluation time. The freezing
// period is deliberately re-read on every gate check so an operator can
// shorten or extend the cooldown without a redeploy.
package policy

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const freezingPeriodKey = "policy:freezing_period_days"

// Provider resolves the freezing period for the retry gate.
type Provider interface {
	FreezingPeriod(ctx context.Context) time.Duration
}

// Static always returns the configured duration.
type Static struct {
	period time.Duration
}

// NewStatic builds a provider pinned to one duration.
func NewStatic(period time.Duration) *Static {
	return &Static{period: period}
}

func (s *Static) FreezingPeriod(context.Context) time.Duration {
	return s.period
}

// RedisOverride consults Redis for an operator-set override and falls back
// to the configured default on a miss or any Redis failure.
type RedisOverride struct {
	client       *goredis.Client
	defaultValue time.Duration
	logger       *slog.Logger
}

// NewRedisOverride builds a provider backed by Redis.
func NewRedisOverride(client *goredis.Client, defaultValue time.Duration, logger *slog.Logger) *RedisOverride {
	return &RedisOverride{client: client, defaultValue: defaultValue, logger: logger}
}

func (p *RedisOverride) FreezingPeriod(ctx context.Context) time.Duration {
	raw, err := p.client.Get(ctx, freezingPeriodKey).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) && p.logger != nil {
			p.logger.WarnContext(ctx, "failed to read freezing period override", "error", err)
		}
		return p.defaultValue
	}
	days, err := strconv.ParseFloat(raw, 64)
	if err != nil || days <= 0 {
		if p.logger != nil {
			p.logger.WarnContext(ctx, "ignoring invalid freezing period override", "value", raw)
		}
		return p.defaultValue
	}
	return time.Duration(days * 24 * float64(time.Hour))
}

// SetOverride writes the operator override. Days must be positive.
func (p *RedisOverride) SetOverride(ctx context.Context, days float64) error {
	return p.client.Set(ctx, freezingPeriodKey, strconv.FormatFloat(days, 'f', -1, 64), 0).Err()
}

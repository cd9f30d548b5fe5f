// Package cache memoizes availability answers in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hotel-pms/models"
)

// AvailabilityCache stores availability per date range. Invalidate drops
// every cached range at once.
//
// Get also returns the generation it looked under. A caller that computes
// the answer after a miss hands that generation back to Set, so an answer
// read before an invalidation is never stored as current.
type AvailabilityCache interface {
	Get(ctx context.Context, checkIn, checkOut time.Time) (groups []models.AvailabilityGroup, generation string, ok bool)
	Set(ctx context.Context, generation string, checkIn, checkOut time.Time, groups []models.AvailabilityGroup)
	Invalidate(ctx context.Context)
}

type NopCache struct{}

func (NopCache) Get(context.Context, time.Time, time.Time) ([]models.AvailabilityGroup, string, bool) {
	return nil, "", false
}
func (NopCache) Set(context.Context, string, time.Time, time.Time, []models.AvailabilityGroup) {}
func (NopCache) Invalidate(context.Context)                                                  {}

const generationKey = "pms:availability:gen"

// RedisAvailabilityCache versions keys with a generation counter, so
// invalidation is a single INCR and stale entries simply age out.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl, log: log}
}

func availabilityKey(generation string, checkIn, checkOut time.Time) string {
	return fmt.Sprintf("pms:availability:%s:%s:%s", generation,
		checkIn.Format(models.DateLayout), checkOut.Format(models.DateLayout))
}

func (c *RedisAvailabilityCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, checkIn, checkOut time.Time) ([]models.AvailabilityGroup, string, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.WithError(err).Debug("availability cache: generation lookup failed")
		return nil, "", false
	}
	raw, err := c.client.Get(ctx, availabilityKey(gen, checkIn, checkOut)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Debug("availability cache: get failed")
		}
		return nil, gen, false
	}
	var groups []models.AvailabilityGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		c.log.WithError(err).Warn("availability cache: corrupt entry")
		return nil, gen, false
	}
	return groups, gen, true
}

// Set stores groups under generation. An empty generation means Get could
// not read one and nothing is stored.
func (c *RedisAvailabilityCache) Set(ctx context.Context, generation string, checkIn, checkOut time.Time, groups []models.AvailabilityGroup) {
	if generation == "" {
		return
	}
	raw, err := json.Marshal(groups)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, availabilityKey(generation, checkIn, checkOut), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("availability cache: set failed")
	}
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.WithError(err).Warn("availability cache: invalidate failed")
	}
}

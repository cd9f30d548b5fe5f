package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

var (
	jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan12 = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
)

func newTestCache(t *testing.T) (*RedisAvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRedisAvailabilityCache(client, time.Minute, log), mr
}

func groupsWith(numbers ...string) []models.AvailabilityGroup {
	g := models.AvailabilityGroup{CategoryID: 1, CategoryName: "DELUXE"}
	for _, n := range numbers {
		g.Rooms = append(g.Rooms, models.AvailableRoom{RoomNumber: n, Price: decimal.NewFromInt(2000), Status: models.RoomAvailable})
	}
	return []models.AvailabilityGroup{g}
}

func roomNumbers(groups []models.AvailabilityGroup) []string {
	var out []string
	for _, g := range groups {
		for _, r := range g.Rooms {
			out = append(out, r.RoomNumber)
		}
	}
	return out
}

func TestAvailabilityKeyIsVersioned(t *testing.T) {
	assert.Equal(t, "pms:availability:0:2024-01-10:2024-01-12", availabilityKey("0", jan10, jan12))
	assert.NotEqual(t, availabilityKey("0", jan10, jan12), availabilityKey("1", jan10, jan12))
}

func TestNopCacheNeverHits(t *testing.T) {
	var c AvailabilityCache = NopCache{}
	c.Set(context.Background(), "0", jan10, jan12, groupsWith("101"))
	_, gen, ok := c.Get(context.Background(), jan10, jan12)
	assert.False(t, ok)
	assert.Empty(t, gen)
}

func TestRedisCacheHitAndMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx, jan10, jan12)
	require.False(t, ok)
	assert.Equal(t, "0", gen)

	c.Set(ctx, gen, jan10, jan12, groupsWith("101", "102"))
	assert.True(t, mr.Exists("pms:availability:0:2024-01-10:2024-01-12"))

	groups, gen, ok := c.Get(ctx, jan10, jan12)
	require.True(t, ok)
	assert.Equal(t, "0", gen)
	assert.Equal(t, []string{"101", "102"}, roomNumbers(groups))

	_, _, ok = c.Get(ctx, jan10, jan12.AddDate(0, 0, 1))
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	_, _, ok = c.Get(ctx, jan10, jan12)
	assert.False(t, ok)
}

func TestRedisCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, gen, _ := c.Get(ctx, jan10, jan12)
	c.Set(ctx, gen, jan10, jan12, groupsWith("101"))

	c.Invalidate(ctx)
	_, gen, ok := c.Get(ctx, jan10, jan12)
	assert.False(t, ok)
	assert.Equal(t, "1", gen)
}

func TestRedisCacheDropsAnswerReadBeforeInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// a reader misses and starts computing
	_, before, ok := c.Get(ctx, jan10, jan12)
	require.False(t, ok)

	// a booking commits in the meantime
	c.Invalidate(ctx)

	// the reader's answer still lists the room that was just booked
	c.Set(ctx, before, jan10, jan12, groupsWith("101", "102"))

	_, gen, ok := c.Get(ctx, jan10, jan12)
	assert.False(t, ok, "an answer from before the booking must not be served")
	assert.Equal(t, "1", gen)

	c.Set(ctx, gen, jan10, jan12, groupsWith("102"))
	groups, _, ok := c.Get(ctx, jan10, jan12)
	require.True(t, ok)
	assert.Equal(t, []string{"102"}, roomNumbers(groups))
}

func TestRedisCacheDownIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	_, gen, ok := c.Get(ctx, jan10, jan12)
	assert.False(t, ok)
	assert.Empty(t, gen)
	c.Set(ctx, gen, jan10, jan12, groupsWith("101"))
	c.Invalidate(ctx)
}

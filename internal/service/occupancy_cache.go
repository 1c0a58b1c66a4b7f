package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// markOccupiedScript bumps the date's fill version and adds a slot only to a date that is
// already cached. A missing key means "unknown" and must stay missing so the next read goes to storage.
var markOccupiedScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
	if redis.call('EXISTS', KEYS[1]) == 1 then
		return redis.call('SADD', KEYS[1], ARGV[1])
	end
	return -1
`)

// storeIfUnchangedScript replaces the cached set only while the fill version still equals ARGV[1].
// ARGV[2] is the TTL in milliseconds, the remaining arguments are the set members.
var storeIfUnchangedScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[2]) or '0'
	if current ~= ARGV[1] then
		return 0
	end
	redis.call('DEL', KEYS[1])
	redis.call('SADD', KEYS[1], unpack(ARGV, 3))
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	return 1
`)

const (
	OccupancyKeyPrefix        = "bookings:occupied:"
	OccupancyVersionKeyPrefix = "bookings:occupancy-version:"

	// occupancyVersionTTL must outlive any read that started before a write
	occupancyVersionTTL = 24 * time.Hour

	// occupancyEmptyMarker keeps a cached empty day distinguishable from a cache miss
	occupancyEmptyMarker = "-"

	redisCacheTimeout = 5 * time.Second

	// Dates per resync batch; one pipeline is executed per batch
	syncBatchSize = 500
)

// OccupancyCache is a read-through Redis cache of occupied slots per date.
// It is advisory: correctness of bookings never depends on it.
type OccupancyCache struct {
	db          *gorm.DB
	redisClient *redis.Client
	bookingRepo repository.BookingRepository
	log         *logrus.Logger
	maxTTL      time.Duration
	loc         *time.Location
	now         func() time.Time

	syncing atomic.Bool
}

func NewOccupancyCache(db *gorm.DB, redisClient *redis.Client, bookingRepo repository.BookingRepository, log *logrus.Logger, maxTTL time.Duration, loc *time.Location) *OccupancyCache {
	if loc == nil {
		loc = time.UTC
	}
	return &OccupancyCache{
		db:          db,
		redisClient: redisClient,
		bookingRepo: bookingRepo,
		log:         log,
		maxTTL:      maxTTL,
		loc:         loc,
		now:         time.Now,
	}
}

// Get returns the cached occupied slots for date. hit is false when the date is not cached.
func (c *OccupancyCache) Get(ctx context.Context, date entity.Date) (slots []entity.TimeSlotCode, hit bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	members, err := c.redisClient.SMembers(ctx, occupancyKey(date)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	slots = make([]entity.TimeSlotCode, 0, len(members))
	for _, m := range members {
		if m == occupancyEmptyMarker {
			continue
		}
		slots = append(slots, entity.TimeSlotCode(m))
	}
	return slots, true, nil
}

// Version returns the fill version of date. Read it before querying storage and hand it to Store.
func (c *OccupancyCache) Version(ctx context.Context, date entity.Date) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	v, err := c.redisClient.Get(ctx, occupancyVersionKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Store replaces the cached set for date unless a write bumped the fill version since
// version was read. stored is false when the fill was discarded as stale.
func (c *OccupancyCache) Store(ctx context.Context, date entity.Date, version int64, slots []entity.TimeSlotCode) (stored bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	res, err := storeIfUnchangedScript.Run(ctx, c.redisClient, c.storeKeys(date), c.storeArgs(date, version, slots)...).Int()
	if err != nil {
		return false, fmt.Errorf("store occupancy for %s: %w", date, err)
	}
	return res == 1, nil
}

// MarkOccupied records a committed booking. It always bumps the fill version so that a
// read which started before the commit cannot fill the cache afterwards.
func (c *OccupancyCache) MarkOccupied(ctx context.Context, slot entity.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	keys := []string{occupancyKey(slot.Date), occupancyVersionKey(slot.Date)}
	return markOccupiedScript.Run(ctx, c.redisClient, keys, string(slot.TimeSlot), occupancyVersionTTL.Milliseconds()).Err()
}

// Invalidate drops the cached set so the next read goes to storage
func (c *OccupancyCache) Invalidate(ctx context.Context, date entity.Date) error {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	pipe := c.redisClient.TxPipeline()
	pipe.Del(ctx, occupancyKey(date))
	pipe.Incr(ctx, occupancyVersionKey(date))
	pipe.PExpire(ctx, occupancyVersionKey(date), occupancyVersionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Resync rebuilds the cache for every booked date from today onward.
// Dates are processed in batches; each batch gets its own pipeline so memory stays bounded.
// Overlapping runs are skipped.
func (c *OccupancyCache) Resync(ctx context.Context) error {
	if !c.syncing.CompareAndSwap(false, true) {
		c.log.Debug("Occupancy resync already running, skipping")
		return nil
	}
	defer c.syncing.Store(false)

	c.log.Info("Starting occupancy cache re-sync from database...")
	startTime := time.Now()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	today := entity.Today(c.now(), c.loc)
	offset := 0
	totalSynced := 0

	for {
		dates, err := c.bookingRepo.FindBookedDates(ctx, c.db, today, syncBatchSize, offset)
		if err != nil {
			c.log.Errorf("Failed to query booked dates at offset %d: %+v", offset, err)
			return fmt.Errorf("query booked dates at offset %d: %w", offset, err)
		}
		if len(dates) == 0 {
			if offset == 0 {
				c.log.Info("No upcoming bookings found for sync")
			}
			break
		}

		versions, err := c.versions(ctx, dates)
		if err != nil {
			c.log.Errorf("Failed to read fill versions for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("read fill versions at offset %d: %w", offset, err)
		}

		slots, err := c.bookingRepo.FindSlotsByDates(ctx, c.db, dates)
		if err != nil {
			c.log.Errorf("Failed to query slots for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("query slots at offset %d: %w", offset, err)
		}

		byDate := make(map[entity.Date][]entity.TimeSlotCode, len(dates))
		for _, s := range slots {
			byDate[s.Date] = append(byDate[s.Date], s.TimeSlot)
		}

		pipe := c.redisClient.Pipeline()
		cmds := make([]*redis.Cmd, len(dates))
		for i, d := range dates {
			cmds[i] = storeIfUnchangedScript.Eval(ctx, pipe, c.storeKeys(d), c.storeArgs(d, versions[i], byDate[d])...)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		skipped := 0
		for _, cmd := range cmds {
			if n, _ := cmd.Int(); n != 1 {
				skipped++
			}
		}
		totalSynced += len(dates) - skipped
		c.log.Debugf("Synced batch: %d dates, %d skipped after concurrent writes", len(dates)-skipped, skipped)

		if len(dates) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	c.log.Infof("Occupancy cache re-sync completed: %d dates synced in %v", totalSynced, time.Since(startTime))
	return nil
}

// versions reads the fill version of each date in one round trip
func (c *OccupancyCache) versions(ctx context.Context, dates []entity.Date) ([]int64, error) {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = occupancyVersionKey(d)
	}

	values, err := c.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	versions := make([]int64, len(dates))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if versions[i], err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("parse fill version %q: %w", raw, err)
		}
	}
	return versions, nil
}

func (c *OccupancyCache) storeKeys(date entity.Date) []string {
	return []string{occupancyKey(date), occupancyVersionKey(date)}
}

func (c *OccupancyCache) storeArgs(date entity.Date, version int64, slots []entity.TimeSlotCode) []interface{} {
	args := make([]interface{}, 0, len(slots)+3)
	args = append(args, version, c.calculateTTL(date).Milliseconds(), occupancyEmptyMarker)
	for _, s := range slots {
		args = append(args, string(s))
	}
	return args
}

// calculateTTL expires an entry at the end of its day in the studio timezone,
// capped by the configured maximum. Past dates get a short TTL for cleanup.
func (c *OccupancyCache) calculateTTL(date entity.Date) time.Duration {
	t := date.Time()
	expireAt := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc).AddDate(0, 0, 1)
	ttl := expireAt.Sub(c.now())

	if ttl <= 0 {
		return 1 * time.Minute
	}
	if c.maxTTL > 0 && ttl > c.maxTTL {
		return c.maxTTL
	}
	return ttl
}

func occupancyKey(date entity.Date) string {
	return OccupancyKeyPrefix + date.String()
}

func occupancyVersionKey(date entity.Date) string {
	return OccupancyVersionKeyPrefix + date.String()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"deadline_notifier/internal/domain/notification"
)

const (
	keyPrefix = "dismissals:"
	// loadedField marks a hash that holds the complete dismissal set of a user,
	// so an empty set can be cached too.
	loadedField = "__loaded"
	// versionTTL outlives any fill that read the version before a write.
	versionTTL = 24 * time.Hour
)

// errStaleFill aborts a cache fill whose data predates a write.
var errStaleFill = errors.New("dismissals changed during cache fill")

type cachedDismissal struct {
	Until     *time.Time `json:"until,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CachedDismissalRepository is a read-through Redis cache in front of another
// DismissalRepository. Writes go to the backing store, then bump the user's version and
// drop the cache entry. A fill is only stored if the version did not move while the
// backing store was read. Redis failures never fail a call; the backing store answers
// instead.
type CachedDismissalRepository struct {
	next   notification.DismissalRepository
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *logrus.Entry
}

func NewCachedDismissalRepository(next notification.DismissalRepository, rdb redis.UniversalClient, ttl time.Duration, logger *logrus.Entry) *CachedDismissalRepository {
	return &CachedDismissalRepository{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.WithField("component", "dismissal_cache"),
	}
}

// The hash tag keeps a user's keys in one cluster slot so WATCH covers both.
func cacheKey(userID uuid.UUID) string {
	return keyPrefix + "{" + userID.String() + "}"
}

func versionKey(userID uuid.UUID) string {
	return cacheKey(userID) + ":ver"
}

func (r *CachedDismissalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Dismissal, error) {
	key := cacheKey(userID)

	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Warn("Dismissal cache read failed")
	} else if _, ok := fields[loadedField]; ok {
		dismissals, err := decode(userID, fields)
		if err == nil {
			return dismissals, nil
		}
		r.logger.WithError(err).WithField("user_id", userID).Warn("Dropping corrupt dismissal cache entry")
	}

	version, verErr := r.version(ctx, userID)
	if verErr != nil {
		r.logger.WithError(verErr).WithField("user_id", userID).Warn("Dismissal cache version read failed")
	}

	dismissals, err := r.next.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if verErr == nil {
		r.store(ctx, userID, version, dismissals)
	}
	return dismissals, nil
}

func (r *CachedDismissalRepository) Upsert(ctx context.Context, userID uuid.UUID, key string, until *time.Time) error {
	if err := r.next.Upsert(ctx, userID, key, until); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedDismissalRepository) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	if err := r.next.Delete(ctx, userID, key); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedDismissalRepository) version(ctx context.Context, userID uuid.UUID) (int64, error) {
	v, err := r.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// store fills the cache unless the user's version differs from the one read before
// the backing store was queried.
func (r *CachedDismissalRepository) store(ctx context.Context, userID uuid.UUID, version int64, dismissals []*notification.Dismissal) {
	values := make(map[string]any, len(dismissals)+1)
	values[loadedField] = "1"
	for _, d := range dismissals {
		raw, err := json.Marshal(cachedDismissal{Until: d.DismissedUntil, CreatedAt: d.CreatedAt})
		if err != nil {
			r.logger.WithError(err).WithField("key", d.Key).Warn("Failed to encode dismissal for cache")
			return
		}
		values[d.Key] = raw
	}

	key, verKey := cacheKey(userID), versionKey(userID)
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return err
		}
		if current != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, values)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		r.logger.WithField("user_id", userID).Debug("Skipping stale dismissal cache fill")
	default:
		r.logger.WithError(err).WithField("user_id", userID).Warn("Dismissal cache write failed")
	}
}

// invalidate bumps the version, which fails any fill in flight, and drops the entry.
func (r *CachedDismissalRepository) invalidate(ctx context.Context, userID uuid.UUID) {
	verKey := versionKey(userID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Warn("Dismissal cache invalidation failed")
	}
}

func decode(userID uuid.UUID, fields map[string]string) ([]*notification.Dismissal, error) {
	dismissals := make([]*notification.Dismissal, 0, len(fields)-1)
	for k, v := range fields {
		if k == loadedField {
			continue
		}
		var c cachedDismissal
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return nil, fmt.Errorf("decode cached dismissal %q: %w", k, err)
		}
		dismissals = append(dismissals, &notification.Dismissal{
			UserID:         userID,
			Key:            k,
			DismissedUntil: c.Until,
			CreatedAt:      c.CreatedAt,
		})
	}
	sort.Slice(dismissals, func(i, j int) bool {
		if !dismissals[i].CreatedAt.Equal(dismissals[j].CreatedAt) {
			return dismissals[i].CreatedAt.Before(dismissals[j].CreatedAt)
		}
		return dismissals[i].Key < dismissals[j].Key
	})
	return dismissals, nil
}

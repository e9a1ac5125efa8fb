package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pulsifi-app/pulsifi-backend/model"
)

const engagementCountTTL = 5 * time.Minute

// EngagementStatusStore caches per-content like/dislike totals in Redis so
// the feed endpoint doesn't recount relation tables on every request. The
// relational store stays authoritative: writes invalidate, reads repopulate.
type EngagementStatusStore struct {
	client *redis.Client
}

func NewEngagementStatusStore() *EngagementStatusStore {
	return &EngagementStatusStore{
		client: redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		}),
	}
}

// GetCounts returns the cached totals for a piece of content. ok is false on
// a cache miss.
func (s *EngagementStatusStore) GetCounts(ctx context.Context, ref model.ContentRef) (likes, dislikes int64, ok bool, err error) {
	values, err := s.client.MGet(ctx, likesKey(ref), dislikesKey(ref)).Result()
	if err != nil {
		return 0, 0, false, err
	}
	likes, okLikes := parseCount(values[0])
	dislikes, okDislikes := parseCount(values[1])
	return likes, dislikes, okLikes && okDislikes, nil
}

// SetCounts repopulates the cache after a miss.
func (s *EngagementStatusStore) SetCounts(ctx context.Context, ref model.ContentRef, likes, dislikes int64) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, likesKey(ref), likes, engagementCountTTL)
	pipe.Set(ctx, dislikesKey(ref), dislikes, engagementCountTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached totals for a piece of content. Called after
// every reaction mutation; the rule hooks may silently correct a write, so
// recounting beats adjusting.
func (s *EngagementStatusStore) Invalidate(ctx context.Context, ref model.ContentRef) error {
	return s.client.Del(ctx, likesKey(ref), dislikesKey(ref)).Err()
}

func likesKey(ref model.ContentRef) string {
	return fmt.Sprintf("engagement:%s:%s:likes", ref.Type, ref.ID)
}

func dislikesKey(ref model.ContentRef) string {
	return fmt.Sprintf("engagement:%s:%s:dislikes", ref.Type, ref.ID)
}

func parseCount(value interface{}) (int64, bool) {
	str, ok := value.(string)
	if !ok {
		return 0, false
	}
	var n int64
	if _, err := fmt.Sscan(str, &n); err != nil {
		return 0, false
	}
	return n, true
}

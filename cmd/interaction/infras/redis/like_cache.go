package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"clipstream.com/pkg/cache"
	"clipstream.com/pkg/constants"
)

// LikeCacheManager keeps per-user liked-video sets in Redis ZSets so the
// hot "did I like this" lookup skips MySQL. The DB ledger stays the source
// of truth; every method here is best effort.
type LikeCacheManager struct {
	client     redis.Cmdable
	defaultTTL time.Duration
}

func NewLikeCacheManager() *LikeCacheManager {
	return &LikeCacheManager{
		client:     cache.InteractionClient,
		defaultTTL: constants.LikeCacheTTL,
	}
}

func userLikesKey(userID int64) string {
	return fmt.Sprintf(constants.UserLikesKeyTemplate, userID)
}

func videoLikersKey(videoID int64) string {
	return fmt.Sprintf(constants.VideoLikersKeyTemplate, videoID)
}

func (lcm *LikeCacheManager) AddUserLike(ctx context.Context, userID, videoID int64) error {
	now := float64(time.Now().Unix())
	pipe := lcm.client.TxPipeline()
	pipe.ZAdd(ctx, userLikesKey(userID), redis.Z{Score: now, Member: videoID})
	pipe.Expire(ctx, userLikesKey(userID), lcm.defaultTTL)
	pipe.ZAdd(ctx, videoLikersKey(videoID), redis.Z{Score: now, Member: userID})
	pipe.Expire(ctx, videoLikersKey(videoID), lcm.defaultTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (lcm *LikeCacheManager) RemoveUserLike(ctx context.Context, userID, videoID int64) error {
	pipe := lcm.client.TxPipeline()
	pipe.ZRem(ctx, userLikesKey(userID), videoID)
	pipe.ZRem(ctx, videoLikersKey(videoID), userID)
	_, err := pipe.Exec(ctx)
	return err
}

// IsVideoLikedByUser answers from cache when the user's like set is warm.
// The second return value reports whether the cache could answer at all.
func (lcm *LikeCacheManager) IsVideoLikedByUser(ctx context.Context, userID, videoID int64) (liked bool, known bool) {
	exists, err := lcm.client.Exists(ctx, userLikesKey(userID)).Result()
	if err != nil || exists == 0 {
		return false, false
	}
	_, err = lcm.client.ZScore(ctx, userLikesKey(userID), fmt.Sprint(videoID)).Result()
	if err == redis.Nil {
		return false, true
	}
	if err != nil {
		return false, false
	}
	return true, true
}

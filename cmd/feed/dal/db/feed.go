package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/database"
)

var DB *gorm.DB

// Init binds the package to the shared connection pool.
func Init() {
	DB = database.GetDB()
}

// CandidatePoolSize caps how much of the completed-video backlog the
// for-you ranker scores per request. Anything older than the pool horizon
// has decayed out of contention anyway.
const CandidatePoolSize = 1000

func GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// ListFollowingVideos pages completed videos of the followed users, newest
// first. hideSeen anti-joins the viewer's completed interactions.
func ListFollowingVideos(ctx context.Context, viewerID int64, ownerIDs []int64, cur *cursor.TimeCursor, limit int, hideSeen bool) ([]*model.Video, error) {
	videos := make([]*model.Video, 0, limit)
	if len(ownerIDs) == 0 {
		return videos, nil
	}
	query := DB.WithContext(ctx).Model(&model.Video{}).
		Where("user_id IN ? AND processing_status = ?", ownerIDs, constants.VideoStatusCompleted)
	if cur != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND video_id < ?)",
			cur.Time(), cur.Time(), cur.ID)
	}
	if hideSeen {
		query = query.Where(
			"NOT EXISTS (SELECT 1 FROM user_interactions ui WHERE ui.user_id = ? AND ui.video_id = videos.video_id AND ui.completed)",
			viewerID)
	}
	err := query.Order("created_at DESC, video_id DESC").Limit(limit).Find(&videos).Error
	return videos, err
}

// ListCandidateVideos returns the recent completed videos the for-you
// ranker scores.
func ListCandidateVideos(ctx context.Context) ([]*model.Video, error) {
	videos := make([]*model.Video, 0, CandidatePoolSize)
	err := DB.WithContext(ctx).Model(&model.Video{}).
		Where("processing_status = ?", constants.VideoStatusCompleted).
		Order("created_at DESC, video_id DESC").
		Limit(CandidatePoolSize).
		Find(&videos).Error
	return videos, err
}

// GetSeenVideoIDs returns the videos the viewer already watched through.
func GetSeenVideoIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	ids := make([]int64, 0)
	err := DB.WithContext(ctx).Model(&model.UserInteraction{}).
		Where("user_id = ? AND completed", userID).
		Pluck("video_id", &ids).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen, nil
}

type completionRow struct {
	VideoID int64
	Ratio   float64
}

// GetCompletionStats returns the share of watchers who finished each video.
func GetCompletionStats(ctx context.Context, videoIDs []int64) (map[int64]float64, error) {
	stats := make(map[int64]float64, len(videoIDs))
	if len(videoIDs) == 0 {
		return stats, nil
	}
	rows := make([]completionRow, 0, len(videoIDs))
	err := DB.WithContext(ctx).Model(&model.UserInteraction{}).
		Select("video_id, AVG(completed) AS ratio").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats[r.VideoID] = r.Ratio
	}
	return stats, nil
}

// RecomputeHashtagStats refreshes the derived hashtag aggregates from the
// engagement counters of recent videos.
func RecomputeHashtagStats(ctx context.Context, window time.Duration) error {
	since := time.Now().Add(-window)
	err := DB.WithContext(ctx).Exec(
		`UPDATE hashtags h SET video_count =
			(SELECT COUNT(*) FROM video_hashtags vh WHERE vh.hashtag_id = h.hashtag_id)`).Error
	if err != nil {
		return err
	}
	return DB.WithContext(ctx).Exec(
		`UPDATE hashtags h SET trending_score =
			(SELECT COALESCE(SUM(v.like_count + 2 * v.comment_count + 3 * v.share_count), 0)
			 FROM video_hashtags vh JOIN videos v ON v.video_id = vh.video_id
			 WHERE vh.hashtag_id = h.hashtag_id AND v.created_at > ?),
		 updated_at = NOW()`, since).Error
}

func GetTrendingHashtags(ctx context.Context, limit int) ([]*model.Hashtag, error) {
	hashtags := make([]*model.Hashtag, 0, limit)
	err := DB.WithContext(ctx).Model(&model.Hashtag{}).
		Order("trending_score DESC, hashtag_id DESC").
		Limit(limit).
		Find(&hashtags).Error
	return hashtags, err
}

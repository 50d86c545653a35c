package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"clipstream.com/pkg/database"
)

var DB *gorm.DB

// Init binds the package to the shared connection pool.
func Init() {
	DB = database.GetDB()
}

// Columns the aggregator may touch. Deltas on anything else are a bug, so
// the apply functions whitelist instead of interpolating blindly.
var videoColumns = map[string]bool{
	"view_count":    true,
	"like_count":    true,
	"comment_count": true,
	"share_count":   true,
}

var userColumns = map[string]bool{
	"total_likes": true,
	"video_count": true,
}

// ApplyVideoDelta adjusts one denormalized video counter atomically in the
// storage layer. Decrements clamp at zero to tolerate delete-before-create
// replays during recovery.
func ApplyVideoDelta(ctx context.Context, videoID int64, column string, delta int64) error {
	if !videoColumns[column] {
		return fmt.Errorf("aggregator: unknown video counter column %q", column)
	}
	expr := fmt.Sprintf("GREATEST(%s + ?, 0)", column)
	return DB.WithContext(ctx).Table("videos").Where("video_id = ?", videoID).
		UpdateColumn(column, gorm.Expr(expr, delta)).Error
}

func ApplyUserDelta(ctx context.Context, userID int64, column string, delta int64) error {
	if !userColumns[column] {
		return fmt.Errorf("aggregator: unknown user counter column %q", column)
	}
	expr := fmt.Sprintf("GREATEST(%s + ?, 0)", column)
	return DB.WithContext(ctx).Table("users").Where("user_id = ?", userID).
		UpdateColumn(column, gorm.Expr(expr, delta)).Error
}

// ReconcileCounters recomputes every denormalized counter from its source
// ledger and overwrites drift. This is the authoritative repair path; the
// event stream is only the fast path.
func ReconcileCounters(ctx context.Context) error {
	statements := []string{
		`UPDATE videos v SET like_count = (SELECT COUNT(*) FROM video_likes l WHERE l.video_id = v.video_id)`,
		// The watch ledger keeps one row per viewer, so a reconciled
		// view_count dedups repeat watches that the fast path counted.
		`UPDATE videos v SET view_count = (SELECT COUNT(*) FROM user_interactions i WHERE i.video_id = v.video_id)`,
		`UPDATE videos v SET comment_count = (SELECT COUNT(*) FROM comments c WHERE c.video_id = v.video_id)`,
		`UPDATE videos v SET share_count = (SELECT COUNT(*) FROM video_shares s WHERE s.video_id = v.video_id)`,
		`UPDATE users u SET video_count = (SELECT COUNT(*) FROM videos v WHERE v.user_id = u.user_id AND v.processing_status = 'completed')`,
		`UPDATE users u SET total_likes = (SELECT COALESCE(SUM(v.like_count), 0) FROM videos v WHERE v.user_id = u.user_id)`,
		`UPDATE users u SET follower_count = (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.user_id)`,
		`UPDATE users u SET following_count = (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.user_id)`,
	}
	for _, stmt := range statements {
		if err := DB.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

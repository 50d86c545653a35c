package constants

import "time"

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	MaxCommentLength = 500

	// Video processing lifecycle.
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"

	// Notification types.
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeMention = "mention"

	// Redis key prefixes.
	EventAppliedKeyPrefix  = "evt:applied:"
	UserLikesKeyTemplate   = "user:likes:%d"
	VideoLikersKeyTemplate = "video:likers:%d"

	EventAppliedTTL = 48 * time.Hour
	LikeCacheTTL    = 24 * time.Hour

	ReconcileLockKey = "aggregator:reconcile:lock"

	TrendingRecomputeInterval = 15 * time.Minute
	TrendingWindow            = 24 * time.Hour
)

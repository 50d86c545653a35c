package mq

// Engagement event types flowing through the bus. Every state change in the
// ledger or the graph produces exactly one event; counters, notifications
// and the search index are all derived from this stream.
const (
	EventLikeAdded     = "like_added"
	EventLikeRemoved   = "like_removed"
	EventCommentAdded  = "comment_added"
	EventShareAdded    = "share_added"
	EventWatchRecorded = "watch_recorded"
	EventFollowAdded   = "follow_added"
	EventFollowRemoved = "follow_removed"
	EventVideoCreated  = "video_created"
)

// EngagementEvent is the single wire format for the engagement stream.
// EventID is the idempotency key: consumers must treat a replayed id as a
// no-op.
type EngagementEvent struct {
	EventID      string `json:"event_id"`
	Type         string `json:"type"`
	ActorID      int64  `json:"actor_id"`
	TargetUserID int64  `json:"target_user_id,omitempty"` // video owner or followee
	VideoID      int64  `json:"video_id,omitempty"`
	CommentID    int64  `json:"comment_id,omitempty"`
	ParentID     int64  `json:"parent_id,omitempty"`
	WatchTime    int64  `json:"watch_time,omitempty"` // seconds
	Completed    bool   `json:"completed,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

const (
	EngagementExchange = "engagement_events"

	CounterQueue      = "counter_agg_queue"
	NotificationQueue = "notification_queue"
	SearchIndexQueue  = "search_index_queue"
)

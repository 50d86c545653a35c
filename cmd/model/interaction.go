package model

import "time"

type VideoLike struct {
	LikeID    int64     `gorm:"primaryKey;column:like_id" json:"like_id"`
	UserID    int64     `gorm:"uniqueIndex:uk_like_pair" json:"user_id"`
	VideoID   int64     `gorm:"uniqueIndex:uk_like_pair;index" json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (VideoLike) TableName() string {
	return "video_likes"
}

// Comment stores a flat parent pointer; ParentID 0 marks a top-level
// comment. One level of nesting is rebuilt at read time.
type Comment struct {
	CommentID int64     `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	VideoID   int64     `gorm:"index:idx_comment_video_parent" json:"video_id"`
	ParentID  int64     `gorm:"index:idx_comment_video_parent;default:0" json:"parent_id"`
	Content   string    `gorm:"size:500" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// VideoShare is append-only: the same user sharing twice is two rows.
type VideoShare struct {
	ShareID   int64     `gorm:"primaryKey;column:share_id" json:"share_id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	VideoID   int64     `gorm:"index" json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (VideoShare) TableName() string {
	return "video_shares"
}

// UserInteraction tracks per (user, video) watch progress for the ranking
// signal and the hide-seen preference.
type UserInteraction struct {
	InteractionID int64     `gorm:"primaryKey;column:interaction_id" json:"interaction_id"`
	UserID        int64     `gorm:"uniqueIndex:uk_interaction_pair" json:"user_id"`
	VideoID       int64     `gorm:"uniqueIndex:uk_interaction_pair;index" json:"video_id"`
	WatchTime     int64     `json:"watch_time"` // seconds, cumulative max
	Completed     bool      `json:"completed"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UserInteraction) TableName() string {
	return "user_interactions"
}

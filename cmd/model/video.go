package model

import "time"

type Video struct {
	VideoID          int64  `gorm:"primaryKey;column:video_id" json:"video_id"`
	UserID           int64  `gorm:"index" json:"user_id"`
	Title            string `gorm:"size:256" json:"title"`
	Description      string `gorm:"size:2048" json:"description"`
	VideoURL         string `gorm:"size:512" json:"video_url"`
	CoverURL         string `gorm:"size:512" json:"cover_url"`
	Duration         int64  `json:"duration"` // seconds
	ProcessingStatus string `gorm:"size:16;index;default:pending" json:"processing_status"`

	// Aggregator-owned roll-ups.
	ViewCount    int64 `json:"view_count"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	ShareCount   int64 `json:"share_count"`

	CreatedAt time.Time `gorm:"index:idx_videos_feed" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

type Hashtag struct {
	HashtagID int64  `gorm:"primaryKey;column:hashtag_id" json:"hashtag_id"`
	Tag       string `gorm:"size:64;uniqueIndex" json:"tag"`

	// Derived aggregates, recomputed on a cadence rather than per write.
	VideoCount    int64   `json:"video_count"`
	TrendingScore float64 `gorm:"index" json:"trending_score"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (Hashtag) TableName() string {
	return "hashtags"
}

type VideoHashtag struct {
	ID        int64 `gorm:"primaryKey"`
	VideoID   int64 `gorm:"uniqueIndex:uk_video_hashtag"`
	HashtagID int64 `gorm:"uniqueIndex:uk_video_hashtag;index"`
}

func (VideoHashtag) TableName() string {
	return "video_hashtags"
}

package model

import "time"

// User carries the four denormalized counters. Request handlers never write
// them directly; only the aggregator and the relation transaction do.
type User struct {
	UserID         int64  `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username       string `gorm:"size:64;uniqueIndex" json:"username"`
	DisplayName    string `gorm:"size:128" json:"display_name"`
	AvatarURL      string `gorm:"size:512" json:"avatar_url"`
	Bio            string `gorm:"size:512" json:"bio"`
	PasswordHash   string `gorm:"size:128" json:"-"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	VideoCount     int64  `json:"video_count"`
	TotalLikes     int64  `json:"total_likes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

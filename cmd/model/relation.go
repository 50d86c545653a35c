package model

import "time"

// Follow is the (follower -> following) edge. The unique index is the
// at-most-once guarantee for concurrent double-follows.
type Follow struct {
	FollowID    int64     `gorm:"primaryKey;column:follow_id" json:"follow_id"`
	FollowerID  int64     `gorm:"uniqueIndex:uk_follow_pair;index:idx_follower_created" json:"follower_id"`
	FollowingID int64     `gorm:"uniqueIndex:uk_follow_pair;index:idx_following_created" json:"following_id"`
	CreatedAt   time.Time `gorm:"index:idx_follower_created;index:idx_following_created" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}

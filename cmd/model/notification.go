package model

import "time"

// Notification rows are collapsed by the dedup key (user_id, actor_id,
// type, video_id) within the trailing window, so rapid repeats of the same
// action update one row instead of inserting spam.
type Notification struct {
	NotificationID int64     `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID         int64     `gorm:"index:idx_notif_user_created" json:"user_id"`
	ActorID        int64     `gorm:"index:idx_notif_dedup" json:"actor_id"`
	Type           string    `gorm:"size:16;index:idx_notif_dedup" json:"type"`
	VideoID        int64     `gorm:"index:idx_notif_dedup;default:0" json:"video_id,omitempty"`
	CommentID      int64     `gorm:"default:0" json:"comment_id,omitempty"`
	Content        string    `gorm:"size:256" json:"content"`
	Read           bool      `gorm:"index" json:"read"`
	CreatedAt      time.Time `gorm:"index:idx_notif_user_created" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/database"
	"clipstream.com/pkg/utils"
)

var DB *gorm.DB

// Init binds the package to the shared connection pool.
func Init() {
	DB = database.GetDB()
}

// UpsertCollapsed writes a notification, folding it into the most recent
// unread row with the same (user, actor, type, video) key if that row is
// younger than the dedup window. A row the user already read stays read
// and a fresh row is inserted instead. It returns the stored row and
// whether a new row was inserted.
func UpsertCollapsed(ctx context.Context, n *model.Notification, window time.Duration) (*model.Notification, bool, error) {
	now := time.Now()
	inserted := false
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Notification
		err := tx.Where(
			"user_id = ? AND actor_id = ? AND type = ? AND video_id = ? AND `read` = ? AND created_at > ?",
			n.UserID, n.ActorID, n.Type, n.VideoID, false, now.Add(-window),
		).Order("created_at DESC").First(&existing).Error
		if err == nil {
			err = tx.Model(&model.Notification{}).
				Where("notification_id = ?", existing.NotificationID).
				Updates(map[string]interface{}{
					"content":    n.Content,
					"comment_id": n.CommentID,
					"created_at": now,
					"updated_at": now,
				}).Error
			if err != nil {
				return err
			}
			n.NotificationID = existing.NotificationID
			n.Read = false
			n.CreatedAt = now
			n.UpdatedAt = now
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		n.NotificationID = utils.GenID()
		n.CreatedAt = now
		n.UpdatedAt = now
		n.Read = false
		inserted = true
		return tx.Create(n).Error
	})
	return n, inserted, err
}

// GetUsername resolves a user id for notification text. Missing users
// resolve to an empty string rather than an error.
func GetUsername(ctx context.Context, userID int64) (string, error) {
	var user model.User
	err := DB.WithContext(ctx).Select("username").
		Where("user_id = ?", userID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return user.Username, err
}

// ListNotifications pages a user's notifications newest first.
func ListNotifications(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int, unreadOnly bool) ([]*model.Notification, error) {
	items := make([]*model.Notification, 0, limit)
	query := DB.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("`read` = ?", false)
	}
	if cur != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND notification_id < ?)",
			cur.Time(), cur.Time(), cur.ID)
	}
	err := query.Order("created_at DESC, notification_id DESC").Limit(limit).Find(&items).Error
	return items, err
}

func CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips one notification to read. Read is monotonic: a row never
// goes back to unread except through a dedup collapse. Returns false when
// the row does not belong to the user.
func MarkRead(ctx context.Context, userID, notificationID int64) (bool, error) {
	result := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ? AND `read` = ?", notificationID, userID, false).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	// Distinguish "already read" from "not yours".
	var count int64
	err := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error
	return count > 0, err
}

// MarkAllRead returns how many rows flipped.
func MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/utils"
)

// CreateFollow inserts the edge and bumps both counters in one transaction,
// so an edge can never exist without its counters reflected. A duplicate
// edge reports created=false and leaves the counters alone.
func CreateFollow(ctx context.Context, followerID, followingID int64) (created bool, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		follow := &model.Follow{
			FollowID:    utils.GenID(),
			FollowerID:  followerID,
			FollowingID: followingID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(follow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		created = true

		if err := tx.Model(&model.User{}).Where("user_id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("user_id = ?", followingID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error
	})
	return created, err
}

// DeleteFollow removes the edge and decrements both counters, floor-clamped
// at zero. A missing edge is a no-op.
func DeleteFollow(ctx context.Context, followerID, followingID int64) (deleted bool, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true

		if err := tx.Model(&model.User{}).Where("user_id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("GREATEST(following_count - 1, 0)")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("user_id = ?", followingID).
			UpdateColumn("follower_count", gorm.Expr("GREATEST(follower_count - 1, 0)")).Error
	})
	return deleted, err
}

func IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	var count int64
	err := DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListFollowerEdges pages the edges pointing at userID, newest first.
func ListFollowerEdges(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error) {
	edges := make([]*model.Follow, 0, limit)
	query := DB.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", userID)
	if cur != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND follow_id < ?)",
			cur.Time(), cur.Time(), cur.ID)
	}
	err := query.Order("created_at DESC, follow_id DESC").Limit(limit).Find(&edges).Error
	return edges, err
}

// ListFollowingEdges pages the edges originating from userID, newest first.
func ListFollowingEdges(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error) {
	edges := make([]*model.Follow, 0, limit)
	query := DB.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID)
	if cur != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND follow_id < ?)",
			cur.Time(), cur.Time(), cur.ID)
	}
	err := query.Order("created_at DESC, follow_id DESC").Limit(limit).Find(&edges).Error
	return edges, err
}

// GetFollowingIDs returns every user followed by userID, for feed candidate
// selection.
func GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

func UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := DB.WithContext(ctx).Model(&model.User{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	err := DB.WithContext(ctx).Where("user_id IN ?", ids).Find(&users).Error
	return users, err
}

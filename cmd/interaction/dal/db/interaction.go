package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/cursor"
)

// CreateVideoLike inserts the like edge. The unique (user_id, video_id)
// index makes concurrent duplicate inserts lose cleanly: created=false.
func CreateVideoLike(ctx context.Context, like *model.VideoLike) (created bool, err error) {
	if err := DB.WithContext(ctx).Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func DeleteVideoLike(ctx context.Context, userID, videoID int64) (deleted bool, err error) {
	res := DB.WithContext(ctx).Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&model.VideoLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func IsVideoLiked(ctx context.Context, userID, videoID int64) (bool, error) {
	var count int64
	err := DB.WithContext(ctx).Model(&model.VideoLike{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetVideoInfo(ctx context.Context, videoID int64) (*model.Video, error) {
	var video model.Video
	if err := DB.WithContext(ctx).Where("video_id = ?", videoID).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func CreateComment(ctx context.Context, comment *model.Comment) error {
	return DB.WithContext(ctx).Create(comment).Error
}

func GetCommentInfo(ctx context.Context, commentID int64) (*model.Comment, error) {
	var comment model.Comment
	if err := DB.WithContext(ctx).Where("comment_id = ?", commentID).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevelComments pages top-level comments newest first.
func ListTopLevelComments(ctx context.Context, videoID int64, cur *cursor.TimeCursor, limit int) ([]*model.Comment, error) {
	comments := make([]*model.Comment, 0, limit)
	query := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id = ? AND parent_id = 0", videoID)
	if cur != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND comment_id < ?)",
			cur.Time(), cur.Time(), cur.ID)
	}
	err := query.Order("created_at DESC, comment_id DESC").Limit(limit).Find(&comments).Error
	return comments, err
}

// ListReplies fetches the immediate replies of the given parents in one
// query over the (video_id, parent_id) index, oldest first.
func ListReplies(ctx context.Context, videoID int64, parentIDs []int64) ([]*model.Comment, error) {
	replies := make([]*model.Comment, 0)
	if len(parentIDs) == 0 {
		return replies, nil
	}
	err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id = ? AND parent_id IN ?", videoID, parentIDs).
		Order("created_at ASC, comment_id ASC").
		Find(&replies).Error
	return replies, err
}

func CreateVideoShare(ctx context.Context, share *model.VideoShare) error {
	return DB.WithContext(ctx).Create(share).Error
}

// UpsertInteraction records watch progress. Watch time only ever grows and
// completion never reverts, so replayed or out-of-order reports are safe.
func UpsertInteraction(ctx context.Context, interaction *model.UserInteraction) error {
	return DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"watch_time": gorm.Expr("GREATEST(watch_time, VALUES(watch_time))"),
			"completed":  gorm.Expr("completed OR VALUES(completed)"),
			"updated_at": interaction.UpdatedAt,
		}),
	}).Create(interaction).Error
}

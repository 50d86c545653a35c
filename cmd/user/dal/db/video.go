package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/utils"
)

// CreateVideo inserts the video row and its hashtag links in one
// transaction. Hashtag rows are created on first use; their counters are
// refreshed by the trending job, not here.
func CreateVideo(ctx context.Context, video *model.Video, tags []string) error {
	video.VideoID = utils.GenID()
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(video).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			hashtag := model.Hashtag{HashtagID: utils.GenID(), Tag: tag}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tag"}},
				DoNothing: true,
			}).Create(&hashtag).Error
			if err != nil {
				return err
			}
			// The insert is skipped for an existing tag, so reload the id.
			if err := tx.Where("tag = ?", tag).Take(&hashtag).Error; err != nil {
				return err
			}
			link := model.VideoHashtag{VideoID: video.VideoID, HashtagID: hashtag.HashtagID}
			if err := tx.Create(&link).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}
		return nil
	})
}

func GetVideoByID(ctx context.Context, videoID int64) (*model.Video, error) {
	var video model.Video
	err := DB.WithContext(ctx).Where("video_id = ?", videoID).Take(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ListUserVideos pages a user's completed videos newest first.
func ListUserVideos(ctx context.Context, userID int64, limit, offset int) ([]*model.Video, error) {
	videos := make([]*model.Video, 0, limit)
	err := DB.WithContext(ctx).Model(&model.Video{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, video_id DESC").
		Limit(limit).Offset(offset).
		Find(&videos).Error
	return videos, err
}

// MarkVideoCompleted flips a video out of the processing state so it
// becomes eligible for feeds.
func MarkVideoCompleted(ctx context.Context, videoID int64) error {
	return DB.WithContext(ctx).Model(&model.Video{}).
		Where("video_id = ?", videoID).
		Update("processing_status", constants.VideoStatusCompleted).Error
}

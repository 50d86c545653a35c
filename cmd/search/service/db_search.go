package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/database"
)

// Users and hashtags are searched straight from MySQL: both tables are
// small relative to videos and a prefix LIKE rides their existing indexes,
// so they never went into the Elasticsearch mirror.

func SearchUsers(ctx context.Context, query string, limit int) ([]*model.User, error) {
	users := make([]*model.User, 0, limit)
	pattern := likePattern(query)
	err := db().WithContext(ctx).Model(&model.User{}).
		Where("username LIKE ? OR display_name LIKE ?", pattern, pattern).
		Order("follower_count DESC, user_id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func SearchHashtags(ctx context.Context, query string, limit int) ([]*model.Hashtag, error) {
	hashtags := make([]*model.Hashtag, 0, limit)
	err := db().WithContext(ctx).Model(&model.Hashtag{}).
		Where("tag LIKE ?", likePattern(strings.TrimPrefix(query, "#"))).
		Order("trending_score DESC, hashtag_id DESC").
		Limit(limit).
		Find(&hashtags).Error
	return hashtags, err
}

func db() *gorm.DB {
	return database.GetDB()
}

func likePattern(query string) string {
	query = strings.ReplaceAll(query, "%", "\\%")
	query = strings.ReplaceAll(query, "_", "\\_")
	return query + "%"
}

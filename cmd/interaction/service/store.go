package service

import (
	"context"

	"clipstream.com/cmd/interaction/dal/db"
	"clipstream.com/cmd/model"
	"clipstream.com/pkg/cursor"
)

// Store is the ledger persistence surface. The gorm implementation
// delegates to dal/db; tests run against an in-memory fake.
type Store interface {
	GetVideo(ctx context.Context, videoID int64) (*model.Video, error)
	CreateLike(ctx context.Context, like *model.VideoLike) (created bool, err error)
	DeleteLike(ctx context.Context, userID, videoID int64) (deleted bool, err error)
	IsLiked(ctx context.Context, userID, videoID int64) (bool, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentID int64) (*model.Comment, error)
	ListTopLevelComments(ctx context.Context, videoID int64, cur *cursor.TimeCursor, limit int) ([]*model.Comment, error)
	ListReplies(ctx context.Context, videoID int64, parentIDs []int64) ([]*model.Comment, error)
	CreateShare(ctx context.Context, share *model.VideoShare) error
	UpsertInteraction(ctx context.Context, interaction *model.UserInteraction) error
}

type dbStore struct{}

func NewDBStore() Store {
	return dbStore{}
}

func (dbStore) GetVideo(ctx context.Context, videoID int64) (*model.Video, error) {
	return db.GetVideoInfo(ctx, videoID)
}

func (dbStore) CreateLike(ctx context.Context, like *model.VideoLike) (bool, error) {
	return db.CreateVideoLike(ctx, like)
}

func (dbStore) DeleteLike(ctx context.Context, userID, videoID int64) (bool, error) {
	return db.DeleteVideoLike(ctx, userID, videoID)
}

func (dbStore) IsLiked(ctx context.Context, userID, videoID int64) (bool, error) {
	return db.IsVideoLiked(ctx, userID, videoID)
}

func (dbStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	return db.CreateComment(ctx, comment)
}

func (dbStore) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	return db.GetCommentInfo(ctx, commentID)
}

func (dbStore) ListTopLevelComments(ctx context.Context, videoID int64, cur *cursor.TimeCursor, limit int) ([]*model.Comment, error) {
	return db.ListTopLevelComments(ctx, videoID, cur, limit)
}

func (dbStore) ListReplies(ctx context.Context, videoID int64, parentIDs []int64) ([]*model.Comment, error) {
	return db.ListReplies(ctx, videoID, parentIDs)
}

func (dbStore) CreateShare(ctx context.Context, share *model.VideoShare) error {
	return db.CreateVideoShare(ctx, share)
}

func (dbStore) UpsertInteraction(ctx context.Context, interaction *model.UserInteraction) error {
	return db.UpsertInteraction(ctx, interaction)
}

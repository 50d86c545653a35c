package service

import (
	"context"

	"clipstream.com/cmd/model"
	"clipstream.com/cmd/user/dal/db"
)

// Store is the persistence surface of the identity slice.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) error
	CreateVideo(ctx context.Context, video *model.Video, tags []string) error
	GetVideoByID(ctx context.Context, videoID int64) (*model.Video, error)
	ListUserVideos(ctx context.Context, userID int64, limit, offset int) ([]*model.Video, error)
	MarkVideoCompleted(ctx context.Context, videoID int64) error
}

type dbStore struct{}

// NewDBStore returns the MySQL-backed store.
func NewDBStore() Store {
	return dbStore{}
}

func (dbStore) CreateUser(ctx context.Context, user *model.User) error {
	return db.CreateUser(ctx, user)
}

func (dbStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.GetUserByUsername(ctx, username)
}

func (dbStore) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return db.GetUserByID(ctx, userID)
}

func (dbStore) UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) error {
	return db.UpdateProfile(ctx, userID, fields)
}

func (dbStore) CreateVideo(ctx context.Context, video *model.Video, tags []string) error {
	return db.CreateVideo(ctx, video, tags)
}

func (dbStore) GetVideoByID(ctx context.Context, videoID int64) (*model.Video, error) {
	return db.GetVideoByID(ctx, videoID)
}

func (dbStore) ListUserVideos(ctx context.Context, userID int64, limit, offset int) ([]*model.Video, error) {
	return db.ListUserVideos(ctx, userID, limit, offset)
}

func (dbStore) MarkVideoCompleted(ctx context.Context, videoID int64) error {
	return db.MarkVideoCompleted(ctx, videoID)
}

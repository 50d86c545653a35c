package service

import (
	"context"

	"clipstream.com/cmd/model"
	"clipstream.com/cmd/relation/dal/db"
	"clipstream.com/pkg/cursor"
)

// Store is the graph persistence the service needs. The production
// implementation delegates to dal/db; tests substitute an in-memory fake.
type Store interface {
	CreateFollow(ctx context.Context, followerID, followingID int64) (created bool, err error)
	DeleteFollow(ctx context.Context, followerID, followingID int64) (deleted bool, err error)
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)
	ListFollowerEdges(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error)
	ListFollowingEdges(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}

type dbStore struct{}

// NewDBStore returns the gorm-backed store.
func NewDBStore() Store {
	return dbStore{}
}

func (dbStore) CreateFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	return db.CreateFollow(ctx, followerID, followingID)
}

func (dbStore) DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	return db.DeleteFollow(ctx, followerID, followingID)
}

func (dbStore) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	return db.IsFollowing(ctx, followerID, followingID)
}

func (dbStore) ListFollowerEdges(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error) {
	return db.ListFollowerEdges(ctx, userID, cur, limit)
}

func (dbStore) ListFollowingEdges(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error) {
	return db.ListFollowingEdges(ctx, userID, cur, limit)
}

func (dbStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	return db.UserExists(ctx, userID)
}

func (dbStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	return db.GetUsersByIDs(ctx, ids)
}

package service

import (
	"context"

	"clipstream.com/cmd/feed/dal/db"
	"clipstream.com/cmd/model"
	"clipstream.com/pkg/cursor"
)

// Store is the persistence surface the feed ranker reads from.
type Store interface {
	GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	ListFollowingVideos(ctx context.Context, viewerID int64, ownerIDs []int64, cur *cursor.TimeCursor, limit int, hideSeen bool) ([]*model.Video, error)
	ListCandidateVideos(ctx context.Context) ([]*model.Video, error)
	GetSeenVideoIDs(ctx context.Context, userID int64) (map[int64]bool, error)
	GetCompletionStats(ctx context.Context, videoIDs []int64) (map[int64]float64, error)
}

type dbStore struct{}

// NewDBStore returns the MySQL-backed store.
func NewDBStore() Store {
	return dbStore{}
}

func (dbStore) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.GetFollowingIDs(ctx, userID)
}

func (dbStore) ListFollowingVideos(ctx context.Context, viewerID int64, ownerIDs []int64, cur *cursor.TimeCursor, limit int, hideSeen bool) ([]*model.Video, error) {
	return db.ListFollowingVideos(ctx, viewerID, ownerIDs, cur, limit, hideSeen)
}

func (dbStore) ListCandidateVideos(ctx context.Context) ([]*model.Video, error) {
	return db.ListCandidateVideos(ctx)
}

func (dbStore) GetSeenVideoIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	return db.GetSeenVideoIDs(ctx, userID)
}

func (dbStore) GetCompletionStats(ctx context.Context, videoIDs []int64) (map[int64]float64, error) {
	return db.GetCompletionStats(ctx, videoIDs)
}

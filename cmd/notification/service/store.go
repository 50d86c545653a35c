package service

import (
	"context"
	"time"

	"clipstream.com/cmd/model"
	"clipstream.com/cmd/notification/dal/db"
	"clipstream.com/pkg/cursor"
)

// Store is the persistence surface of the notification engine.
type Store interface {
	UpsertCollapsed(ctx context.Context, n *model.Notification, window time.Duration) (*model.Notification, bool, error)
	ListNotifications(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int, unreadOnly bool) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	GetUsername(ctx context.Context, userID int64) (string, error)
}

type dbStore struct{}

// NewDBStore returns the MySQL-backed store.
func NewDBStore() Store {
	return dbStore{}
}

func (dbStore) UpsertCollapsed(ctx context.Context, n *model.Notification, window time.Duration) (*model.Notification, bool, error) {
	return db.UpsertCollapsed(ctx, n, window)
}

func (dbStore) ListNotifications(ctx context.Context, userID int64, cur *cursor.TimeCursor, limit int, unreadOnly bool) ([]*model.Notification, error) {
	return db.ListNotifications(ctx, userID, cur, limit, unreadOnly)
}

func (dbStore) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return db.CountUnread(ctx, userID)
}

func (dbStore) MarkRead(ctx context.Context, userID, notificationID int64) (bool, error) {
	return db.MarkRead(ctx, userID, notificationID)
}

func (dbStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return db.MarkAllRead(ctx, userID)
}

func (dbStore) GetUsername(ctx context.Context, userID int64) (string, error) {
	return db.GetUsername(ctx, userID)
}

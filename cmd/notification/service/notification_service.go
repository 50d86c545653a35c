package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/model"
	"clipstream.com/config"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/mq"
)

// Pusher delivers a freshly stored notification to the recipient's live
// connections, if any. Delivery is best effort.
type Pusher interface {
	Push(userID int64, n *model.Notification)
}

type NotificationService struct {
	ctx    context.Context
	store  Store
	pusher Pusher
	window time.Duration
}

// NewNotificationService wires the engine. pusher may be nil when no
// realtime gateway runs in this process.
func NewNotificationService(ctx context.Context, store Store, pusher Pusher) *NotificationService {
	window := config.ConfigInfo.Notification.DedupWindow
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &NotificationService{ctx: ctx, store: store, pusher: pusher, window: window}
}

// Handle turns an engagement event into at most one notification. Actions a
// user takes on their own content never notify them.
func (s *NotificationService) Handle(ctx context.Context, event *mq.EngagementEvent) error {
	if event.TargetUserID == 0 || event.TargetUserID == event.ActorID {
		return nil
	}

	var notifType, verb string
	switch event.Type {
	case mq.EventLikeAdded:
		notifType, verb = constants.NotificationTypeLike, "liked your video"
	case mq.EventCommentAdded:
		if event.ParentID != 0 {
			notifType, verb = constants.NotificationTypeComment, "replied to your comment"
		} else {
			notifType, verb = constants.NotificationTypeComment, "commented on your video"
		}
	case mq.EventFollowAdded:
		notifType, verb = constants.NotificationTypeFollow, "started following you"
	default:
		// Removals, watches and video lifecycle events carry no
		// notification.
		return nil
	}

	actorName, err := s.store.GetUsername(ctx, event.ActorID)
	if err != nil {
		return err
	}
	if actorName == "" {
		actorName = fmt.Sprintf("user %d", event.ActorID)
	}

	n := &model.Notification{
		UserID:    event.TargetUserID,
		ActorID:   event.ActorID,
		Type:      notifType,
		VideoID:   event.VideoID,
		CommentID: event.CommentID,
		Content:   fmt.Sprintf("%s %s", actorName, verb),
	}
	stored, inserted, err := s.store.UpsertCollapsed(ctx, n, s.window)
	if err != nil {
		return err
	}
	if !inserted {
		logrus.Debugf("notification: collapsed repeat %s from %d to %d", notifType, event.ActorID, event.TargetUserID)
	}
	if s.pusher != nil {
		s.pusher.Push(stored.UserID, stored)
	}
	return nil
}

// NotificationPage is one page of a user's notifications plus the unread
// badge count.
type NotificationPage struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
	NextCursor    string                `json:"next_cursor,omitempty"`
	HasMore       bool                  `json:"has_more"`
}

func (s *NotificationService) List(ctx context.Context, userID int64, cursorToken string, limit int, unreadOnly bool) (*NotificationPage, error) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	cur, err := cursor.DecodeTime(cursorToken)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListNotifications(ctx, userID, cur, limit+1, unreadOnly)
	if err != nil {
		return nil, err
	}
	page := &NotificationPage{Notifications: items}
	if len(items) > limit {
		page.HasMore = true
		page.Notifications = items[:limit]
		last := page.Notifications[len(page.Notifications)-1]
		page.NextCursor = cursor.EncodeTime(last.CreatedAt, last.NotificationID)
	}
	if page.UnreadCount, err = s.store.CountUnread(ctx, userID); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	owned, err := s.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !owned {
		return errno.RecordNotFoundErr.WithMessage("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

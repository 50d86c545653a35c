package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/mq"
)

// fakeNotifStore mirrors the collapse-and-page semantics of the dal in
// memory, with a controllable clock so window boundaries are exact.
type fakeNotifStore struct {
	mu     sync.Mutex
	rows   []*model.Notification
	users  map[int64]string
	nextID int64
	now    time.Time
}

func newFakeNotifStore() *fakeNotifStore {
	return &fakeNotifStore{
		users: map[int64]string{1: "alice", 2: "bob", 3: "carol"},
		now:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeNotifStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *fakeNotifStore) UpsertCollapsed(_ context.Context, n *model.Notification, window time.Duration) (*model.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.UserID == n.UserID && row.ActorID == n.ActorID &&
			row.Type == n.Type && row.VideoID == n.VideoID &&
			!row.Read && row.CreatedAt.After(s.now.Add(-window)) {
			row.Content = n.Content
			row.CommentID = n.CommentID
			row.CreatedAt = s.now
			*n = *row
			return n, false, nil
		}
	}
	s.nextID++
	n.NotificationID = s.nextID
	n.CreatedAt = s.now
	n.Read = false
	clone := *n
	s.rows = append(s.rows, &clone)
	return n, true, nil
}

func (s *fakeNotifStore) ListNotifications(_ context.Context, userID int64, cur *cursor.TimeCursor, limit int, unreadOnly bool) ([]*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Notification, 0)
	for _, row := range s.rows {
		if row.UserID != userID || (unreadOnly && row.Read) {
			continue
		}
		if cur != nil {
			before := row.CreatedAt.Before(cur.Time()) ||
				(row.CreatedAt.Equal(cur.Time()) && row.NotificationID < cur.ID)
			if !before {
				continue
			}
		}
		clone := *row
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].NotificationID > out[j].NotificationID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeNotifStore) CountUnread(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeNotifStore) MarkRead(_ context.Context, userID, notificationID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.NotificationID == notificationID && row.UserID == userID {
			row.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeNotifStore) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			row.Read = true
			flipped++
		}
	}
	return flipped, nil
}

func (s *fakeNotifStore) GetUsername(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID], nil
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []*model.Notification
}

func (p *recordingPusher) Push(_ int64, n *model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, n)
}

func newTestService(store Store, pusher Pusher) *NotificationService {
	return &NotificationService{
		ctx:    context.Background(),
		store:  store,
		pusher: pusher,
		window: 5 * time.Minute,
	}
}

func likeEvent(id string, actor, target, video int64) *mq.EngagementEvent {
	return &mq.EngagementEvent{
		EventID:      id,
		Type:         mq.EventLikeAdded,
		ActorID:      actor,
		TargetUserID: target,
		VideoID:      video,
	}
}

func TestRepeatedLikesCollapseWithinWindow(t *testing.T) {
	store := newFakeNotifStore()
	pusher := &recordingPusher{}
	svc := newTestService(store, pusher)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 2, 1, 10)))
	store.advance(time.Minute)
	require.NoError(t, svc.Handle(ctx, likeEvent("e2", 2, 1, 10)))
	store.advance(time.Minute)
	require.NoError(t, svc.Handle(ctx, likeEvent("e3", 2, 1, 10)))

	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, int64(1), page.UnreadCount)
	assert.Equal(t, store.now, page.Notifications[0].CreatedAt)
	// Every collapse still reaches live sockets.
	assert.Len(t, pusher.pushes, 3)
}

func TestReadRowIsNotCollapsedInto(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 2, 1, 10)))
	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	firstID := page.Notifications[0].NotificationID
	require.NoError(t, svc.MarkRead(ctx, 1, firstID))

	store.advance(time.Minute)
	require.NoError(t, svc.Handle(ctx, likeEvent("e2", 2, 1, 10)))

	page, err = svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	// The read row stays read; only the new row counts as unread.
	assert.Equal(t, int64(1), page.UnreadCount)
	for _, n := range page.Notifications {
		if n.NotificationID == firstID {
			assert.True(t, n.Read)
		}
	}
}

func TestLikesOutsideWindowCreateSeparateRows(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 2, 1, 10)))
	store.advance(6 * time.Minute)
	require.NoError(t, svc.Handle(ctx, likeEvent("e2", 2, 1, 10)))

	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
}

func TestDistinctActorsNeverCollapse(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 2, 1, 10)))
	require.NoError(t, svc.Handle(ctx, likeEvent("e2", 3, 1, 10)))

	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
}

func TestSelfActionsAreSilent(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 1, 1, 10)))
	require.NoError(t, svc.Handle(ctx, &mq.EngagementEvent{
		EventID: "e2", Type: mq.EventFollowAdded, ActorID: 1, TargetUserID: 1,
	}))

	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
}

func TestRemovalEventsAreSilent(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, &mq.EngagementEvent{
		EventID: "e1", Type: mq.EventLikeRemoved, ActorID: 2, TargetUserID: 1, VideoID: 10,
	}))
	require.NoError(t, svc.Handle(ctx, &mq.EngagementEvent{
		EventID: "e2", Type: mq.EventWatchRecorded, ActorID: 2, TargetUserID: 1, VideoID: 10,
	}))

	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
}

func TestReplyNotificationNamesTheComment(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, &mq.EngagementEvent{
		EventID: "e1", Type: mq.EventCommentAdded,
		ActorID: 2, TargetUserID: 1, VideoID: 10, CommentID: 77, ParentID: 55,
	}))

	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	n := page.Notifications[0]
	assert.Equal(t, constants.NotificationTypeComment, n.Type)
	assert.Equal(t, int64(77), n.CommentID)
	assert.Equal(t, "bob replied to your comment", n.Content)
}

func TestMarkReadIsMonotonicAndScoped(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 2, 1, 10)))
	page, err := svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	id := page.Notifications[0].NotificationID

	require.NoError(t, svc.MarkRead(ctx, 1, id))
	// Marking twice stays read and stays successful.
	require.NoError(t, svc.MarkRead(ctx, 1, id))

	page, err = svc.List(ctx, 1, "", 10, false)
	require.NoError(t, err)
	assert.True(t, page.Notifications[0].Read)
	assert.Zero(t, page.UnreadCount)

	// Another user cannot touch the row.
	err = svc.MarkRead(ctx, 2, id)
	assert.Error(t, err)
}

func TestMarkAllReadCountsFlips(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, likeEvent("e1", 2, 1, 10)))
	require.NoError(t, svc.Handle(ctx, likeEvent("e2", 3, 1, 10)))

	flipped, err := svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), flipped)

	flipped, err = svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	store := newFakeNotifStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	for i := int64(0); i < 12; i++ {
		require.NoError(t, svc.Handle(ctx, likeEvent("e", 2, 1, 100+i)))
		store.advance(10 * time.Minute)
	}

	seen := make(map[int64]bool)
	token := ""
	for {
		page, err := svc.List(ctx, 1, token, 5, false)
		require.NoError(t, err)
		for _, n := range page.Notifications {
			assert.False(t, seen[n.NotificationID])
			seen[n.NotificationID] = true
		}
		if !page.HasMore {
			break
		}
		token = page.NextCursor
	}
	assert.Len(t, seen, 12)
}

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipstream.com/pkg/mq"
)

type fakeCounterStore struct {
	mu       sync.Mutex
	videos   map[string]int64 // "videoID:column"
	users    map[string]int64
	failures int
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		videos: make(map[string]int64),
		users:  make(map[string]int64),
	}
}

func (s *fakeCounterStore) ApplyVideoDelta(_ context.Context, videoID int64, column string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("storage timeout")
	}
	key := fmt.Sprintf("%d:%s", videoID, column)
	v := s.videos[key] + delta
	if v < 0 {
		v = 0
	}
	s.videos[key] = v
	return nil
}

func (s *fakeCounterStore) ApplyUserDelta(_ context.Context, userID int64, column string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d:%s", userID, column)
	v := s.users[key] + delta
	if v < 0 {
		v = 0
	}
	s.users[key] = v
	return nil
}

type memMarker struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemMarker() *memMarker {
	return &memMarker{seen: make(map[string]bool)}
}

func (m *memMarker) MarkApplied(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func (m *memMarker) Unmark(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, eventID)
	return nil
}

func likeEvent(eventType string) *mq.EngagementEvent {
	return &mq.EngagementEvent{
		EventID:      uuid.New().String(),
		Type:         eventType,
		ActorID:      1,
		TargetUserID: 2,
		VideoID:      100,
	}
}

func TestReplayedEventIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := NewCounterService(store, newMemMarker())

	event := likeEvent(mq.EventLikeAdded)
	require.NoError(t, svc.Handle(ctx, event))
	require.NoError(t, svc.Handle(ctx, event))
	require.NoError(t, svc.Handle(ctx, event))

	assert.Equal(t, int64(1), store.videos["100:like_count"])
	assert.Equal(t, int64(1), store.users["2:total_likes"])
}

func TestLikeAddRemoveNetsToZero(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := NewCounterService(store, newMemMarker())

	require.NoError(t, svc.Handle(ctx, likeEvent(mq.EventLikeAdded)))
	require.NoError(t, svc.Handle(ctx, likeEvent(mq.EventLikeRemoved)))

	assert.Equal(t, int64(0), store.videos["100:like_count"])
	assert.Equal(t, int64(0), store.users["2:total_likes"])
}

func TestDecrementBeforeIncrementClampsAtZero(t *testing.T) {
	// Out-of-order replay during recovery: the remove arrives first. The
	// floor clamp keeps the counter non-negative and the reconcile pass
	// is the authority that settles the final value.
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := NewCounterService(store, newMemMarker())

	require.NoError(t, svc.Handle(ctx, likeEvent(mq.EventLikeRemoved)))
	assert.Equal(t, int64(0), store.videos["100:like_count"])

	require.NoError(t, svc.Handle(ctx, likeEvent(mq.EventLikeAdded)))
	assert.Equal(t, int64(1), store.videos["100:like_count"])
}

func TestTenDistinctLikersOnSeededCounter(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	store.videos["100:like_count"] = 5
	svc := NewCounterService(store, newMemMarker())

	var wg sync.WaitGroup
	for u := int64(1); u <= 10; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			event := &mq.EngagementEvent{
				EventID:      uuid.New().String(),
				Type:         mq.EventLikeAdded,
				ActorID:      userID,
				TargetUserID: 2,
				VideoID:      100,
			}
			assert.NoError(t, svc.Handle(ctx, event))
		}(u)
	}
	wg.Wait()

	assert.Equal(t, int64(15), store.videos["100:like_count"])
}

func TestEventTypeRouting(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := NewCounterService(store, newMemMarker())

	events := []*mq.EngagementEvent{
		{EventID: uuid.New().String(), Type: mq.EventCommentAdded, VideoID: 100},
		{EventID: uuid.New().String(), Type: mq.EventShareAdded, VideoID: 100},
		{EventID: uuid.New().String(), Type: mq.EventWatchRecorded, VideoID: 100, ActorID: 1},
		{EventID: uuid.New().String(), Type: mq.EventVideoCreated, TargetUserID: 2},
		{EventID: uuid.New().String(), Type: mq.EventFollowAdded, ActorID: 1, TargetUserID: 2},
	}
	for _, e := range events {
		require.NoError(t, svc.Handle(ctx, e))
	}

	assert.Equal(t, int64(1), store.videos["100:comment_count"])
	assert.Equal(t, int64(1), store.videos["100:share_count"])
	assert.Equal(t, int64(1), store.videos["100:view_count"])
	assert.Equal(t, int64(1), store.users["2:video_count"])
	// Follow events never touch counters here, the graph transaction owns them.
	assert.NotContains(t, store.users, "2:follower_count")
}

func TestFailedApplyIsRetriableOnRedelivery(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	store.failures = 1
	svc := NewCounterService(store, newMemMarker())

	event := likeEvent(mq.EventLikeAdded)
	require.Error(t, svc.Handle(ctx, event))
	assert.Equal(t, int64(0), store.videos["100:like_count"])

	// The broker redelivers; the marker must not remember the failed run.
	require.NoError(t, svc.Handle(ctx, event))
	assert.Equal(t, int64(1), store.videos["100:like_count"])
	assert.Equal(t, int64(1), store.users["2:total_likes"])

	// A third delivery is the replayed-duplicate case again.
	require.NoError(t, svc.Handle(ctx, event))
	assert.Equal(t, int64(1), store.videos["100:like_count"])
}

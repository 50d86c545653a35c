package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/mq"
)

// fakeGraphStore mirrors the dal transaction semantics in memory: edge
// insert and counter bump happen together, duplicate pairs are rejected.
type fakeGraphStore struct {
	users  map[int64]*model.User
	edges  map[string]*model.Follow
	nextID int64
	now    time.Time
}

func newFakeGraphStore(userIDs ...int64) *fakeGraphStore {
	s := &fakeGraphStore{
		users: make(map[int64]*model.User),
		edges: make(map[string]*model.Follow),
		now:   time.Now(),
	}
	for _, id := range userIDs {
		s.users[id] = &model.User{UserID: id, Username: fmt.Sprintf("user%d", id)}
	}
	return s
}

func pairKey(a, b int64) string { return fmt.Sprintf("%d:%d", a, b) }

func (s *fakeGraphStore) CreateFollow(_ context.Context, followerID, followingID int64) (bool, error) {
	key := pairKey(followerID, followingID)
	if _, ok := s.edges[key]; ok {
		return false, nil
	}
	s.nextID++
	s.now = s.now.Add(time.Millisecond)
	s.edges[key] = &model.Follow{
		FollowID:    s.nextID,
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   s.now,
	}
	s.users[followerID].FollowingCount++
	s.users[followingID].FollowerCount++
	return true, nil
}

func (s *fakeGraphStore) DeleteFollow(_ context.Context, followerID, followingID int64) (bool, error) {
	key := pairKey(followerID, followingID)
	if _, ok := s.edges[key]; !ok {
		return false, nil
	}
	delete(s.edges, key)
	if s.users[followerID].FollowingCount > 0 {
		s.users[followerID].FollowingCount--
	}
	if s.users[followingID].FollowerCount > 0 {
		s.users[followingID].FollowerCount--
	}
	return true, nil
}

func (s *fakeGraphStore) IsFollowing(_ context.Context, followerID, followingID int64) (bool, error) {
	_, ok := s.edges[pairKey(followerID, followingID)]
	return ok, nil
}

func (s *fakeGraphStore) listEdges(filter func(*model.Follow) bool, cur *cursor.TimeCursor, limit int) []*model.Follow {
	edges := make([]*model.Follow, 0)
	for _, e := range s.edges {
		if filter(e) {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.After(edges[j].CreatedAt)
		}
		return edges[i].FollowID > edges[j].FollowID
	})
	if cur != nil {
		pos := 0
		for i, e := range edges {
			if e.CreatedAt.Before(cur.Time()) ||
				(e.CreatedAt.Equal(cur.Time()) && e.FollowID < cur.ID) {
				pos = i
				break
			}
			pos = i + 1
		}
		edges = edges[pos:]
	}
	if len(edges) > limit {
		edges = edges[:limit]
	}
	return edges
}

func (s *fakeGraphStore) ListFollowerEdges(_ context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error) {
	return s.listEdges(func(e *model.Follow) bool { return e.FollowingID == userID }, cur, limit), nil
}

func (s *fakeGraphStore) ListFollowingEdges(_ context.Context, userID int64, cur *cursor.TimeCursor, limit int) ([]*model.Follow, error) {
	return s.listEdges(func(e *model.Follow) bool { return e.FollowerID == userID }, cur, limit), nil
}

func (s *fakeGraphStore) UserExists(_ context.Context, userID int64) (bool, error) {
	_, ok := s.users[userID]
	return ok, nil
}

func (s *fakeGraphStore) GetUsersByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

type recordingPublisher struct {
	events []*mq.EngagementEvent
}

func (p *recordingPublisher) PublishEngagementEvent(_ context.Context, event *mq.EngagementEvent) error {
	p.events = append(p.events, event)
	return nil
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeGraphStore(1, 2)
	pub := &recordingPublisher{}
	svc := NewRelationService(ctx, store, pub)

	require.NoError(t, svc.Follow(ctx, 1, 2))
	require.NoError(t, svc.Follow(ctx, 1, 2))

	assert.Len(t, store.edges, 1)
	assert.Equal(t, int64(1), store.users[1].FollowingCount)
	assert.Equal(t, int64(1), store.users[2].FollowerCount)
	// Only the first follow publishes an event.
	assert.Len(t, pub.events, 1)
	assert.Equal(t, mq.EventFollowAdded, pub.events[0].Type)
}

func TestSelfFollowRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewRelationService(ctx, newFakeGraphStore(1), &recordingPublisher{})

	err := svc.Follow(ctx, 1, 1)
	require.Error(t, err)
	assert.Equal(t, int64(errno.InvalidStateCode), errno.ConvertErr(err).ErrCode)
}

func TestFollowUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := NewRelationService(ctx, newFakeGraphStore(1), &recordingPublisher{})

	err := svc.Follow(ctx, 1, 99)
	require.Error(t, err)
	assert.Equal(t, int64(errno.RecordNotFoundCode), errno.ConvertErr(err).ErrCode)
}

func TestFollowStateTracksEdge(t *testing.T) {
	ctx := context.Background()
	store := newFakeGraphStore(1, 2)
	svc := NewRelationService(ctx, store, &recordingPublisher{})

	following, err := svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Follow(ctx, 1, 2))
	following, err = svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)

	// The edge is directional.
	following, err = svc.IsFollowing(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Unfollow(ctx, 1, 2))
	following, err = svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestUnfollowAbsentEdgeIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newFakeGraphStore(1, 2)
	pub := &recordingPublisher{}
	svc := NewRelationService(ctx, store, pub)

	require.NoError(t, svc.Unfollow(ctx, 1, 2))
	assert.Empty(t, pub.events)
}

func TestFollowerCountScenario(t *testing.T) {
	// A is followed by B and C, then C unfollows.
	ctx := context.Background()
	store := newFakeGraphStore(1, 2, 3) // A=1, B=2, C=3
	svc := NewRelationService(ctx, store, &recordingPublisher{})

	require.NoError(t, svc.Follow(ctx, 2, 1))
	require.NoError(t, svc.Follow(ctx, 3, 1))
	assert.Equal(t, int64(2), store.users[1].FollowerCount)

	require.NoError(t, svc.Unfollow(ctx, 3, 1))
	assert.Equal(t, int64(1), store.users[1].FollowerCount)

	resp, err := svc.ListFollowers(ctx, 1, "", 10)
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, int64(2), resp.Users[0].UserID)
	assert.False(t, resp.HasMore)
}

func TestFollowerPaginationExhaustiveAndNonDuplicating(t *testing.T) {
	ctx := context.Background()
	ids := []int64{1}
	for i := int64(2); i <= 26; i++ {
		ids = append(ids, i)
	}
	store := newFakeGraphStore(ids...)
	svc := NewRelationService(ctx, store, &recordingPublisher{})

	for i := int64(2); i <= 26; i++ {
		require.NoError(t, svc.Follow(ctx, i, 1))
	}

	seen := make(map[int64]bool)
	token := ""
	pages := 0
	for {
		resp, err := svc.ListFollowers(ctx, 1, token, 7)
		require.NoError(t, err)
		for _, u := range resp.Users {
			assert.False(t, seen[u.UserID], "user %d returned twice", u.UserID)
			seen[u.UserID] = true
		}
		pages++
		if !resp.HasMore {
			break
		}
		require.NotEmpty(t, resp.NextCursor)
		token = resp.NextCursor
	}
	assert.Len(t, seen, 25)
	assert.Equal(t, 4, pages)
}

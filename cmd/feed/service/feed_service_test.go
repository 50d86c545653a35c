package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
)

var testWeights = Weights{
	Like:     3.0,
	View:     0.5,
	Comment:  5.0,
	Share:    10.0,
	Watch:    2.0,
	Recency:  1.0,
	HalfLife: 6 * time.Hour,
}

// fakeFeedStore serves a fixed video set with the same filtering and
// ordering the dal queries apply.
type fakeFeedStore struct {
	videos     []*model.Video
	following  map[int64][]int64
	seen       map[int64]map[int64]bool
	completion map[int64]float64
}

func newFakeFeedStore() *fakeFeedStore {
	return &fakeFeedStore{
		following:  make(map[int64][]int64),
		seen:       make(map[int64]map[int64]bool),
		completion: make(map[int64]float64),
	}
}

func (s *fakeFeedStore) addVideo(id, ownerID int64, createdAt time.Time, likes int64) *model.Video {
	v := &model.Video{
		VideoID:          id,
		UserID:           ownerID,
		ProcessingStatus: constants.VideoStatusCompleted,
		LikeCount:        likes,
		CreatedAt:        createdAt,
	}
	s.videos = append(s.videos, v)
	return v
}

func (s *fakeFeedStore) GetFollowingIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.following[userID], nil
}

func (s *fakeFeedStore) ListFollowingVideos(_ context.Context, viewerID int64, ownerIDs []int64, cur *cursor.TimeCursor, limit int, hideSeen bool) ([]*model.Video, error) {
	owners := make(map[int64]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	out := make([]*model.Video, 0)
	for _, v := range s.videos {
		if !owners[v.UserID] || v.ProcessingStatus != constants.VideoStatusCompleted {
			continue
		}
		if cur != nil {
			before := v.CreatedAt.Before(cur.Time()) ||
				(v.CreatedAt.Equal(cur.Time()) && v.VideoID < cur.ID)
			if !before {
				continue
			}
		}
		if hideSeen && s.seen[viewerID][v.VideoID] {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].VideoID > out[j].VideoID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeFeedStore) ListCandidateVideos(_ context.Context) ([]*model.Video, error) {
	out := make([]*model.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if v.ProcessingStatus == constants.VideoStatusCompleted {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeFeedStore) GetSeenVideoIDs(_ context.Context, userID int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(s.seen[userID]))
	for id, ok := range s.seen[userID] {
		out[id] = ok
	}
	return out, nil
}

func (s *fakeFeedStore) GetCompletionStats(_ context.Context, videoIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(videoIDs))
	for _, id := range videoIDs {
		if r, ok := s.completion[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func newTestFeedService(store Store) *FeedService {
	svc := NewFeedService(context.Background(), store, testWeights)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc
}

func TestFollowingFeedEmptyWithoutFollows(t *testing.T) {
	store := newFakeFeedStore()
	store.addVideo(1, 100, time.Now(), 0)
	svc := newTestFeedService(store)

	page, err := svc.FollowingFeed(context.Background(), 1, "", 10, false)
	require.NoError(t, err)
	assert.Empty(t, page.Videos)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestFollowingFeedPaginationExhaustiveAndNonDuplicating(t *testing.T) {
	store := newFakeFeedStore()
	store.following[1] = []int64{100, 101}
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(0); i < 25; i++ {
		owner := int64(100 + i%2)
		store.addVideo(1000+i, owner, base.Add(time.Duration(i)*time.Minute), 0)
	}
	svc := newTestFeedService(store)

	seen := make(map[int64]bool)
	token := ""
	pages := 0
	for {
		page, err := svc.FollowingFeed(context.Background(), 1, token, 7, false)
		require.NoError(t, err)
		pages++
		var prev time.Time
		for i, v := range page.Videos {
			assert.False(t, seen[v.VideoID], "video %d repeated", v.VideoID)
			seen[v.VideoID] = true
			if i > 0 {
				assert.False(t, v.CreatedAt.After(prev), "page not newest first")
			}
			prev = v.CreatedAt
		}
		if !page.HasMore {
			break
		}
		token = page.NextCursor
	}
	assert.Equal(t, 25, len(seen))
	assert.Equal(t, 4, pages)
}

func TestFollowingFeedHidesWatchedVideos(t *testing.T) {
	store := newFakeFeedStore()
	store.following[1] = []int64{100}
	base := time.Now().Add(-time.Hour)
	store.addVideo(10, 100, base, 0)
	store.addVideo(11, 100, base.Add(time.Minute), 0)
	store.seen[1] = map[int64]bool{10: true}
	svc := newTestFeedService(store)

	page, err := svc.FollowingFeed(context.Background(), 1, "", 10, true)
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, int64(11), page.Videos[0].VideoID)
}

func TestFollowingFeedRejectsGarbageCursor(t *testing.T) {
	store := newFakeFeedStore()
	store.following[1] = []int64{100}
	svc := newTestFeedService(store)

	_, err := svc.FollowingFeed(context.Background(), 1, "!!not-a-cursor!!", 10, false)
	assert.Error(t, err)
}

func TestForYouRanksByEngagement(t *testing.T) {
	store := newFakeFeedStore()
	created := time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)
	store.addVideo(1, 100, created, 1)
	store.addVideo(2, 100, created, 500)
	store.addVideo(3, 100, created, 40)
	svc := newTestFeedService(store)

	page, err := svc.ForYouFeed(context.Background(), 1, "", 10, false)
	require.NoError(t, err)
	require.Len(t, page.Videos, 3)
	assert.Equal(t, int64(2), page.Videos[0].VideoID)
	assert.Equal(t, int64(3), page.Videos[1].VideoID)
	assert.Equal(t, int64(1), page.Videos[2].VideoID)
	assert.False(t, page.HasMore)
}

func TestForYouCursorStableUnderNewHighScorers(t *testing.T) {
	store := newFakeFeedStore()
	created := time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 6; i++ {
		store.addVideo(i, 100, created, i*10)
	}
	svc := newTestFeedService(store)

	first, err := svc.ForYouFeed(context.Background(), 1, "", 3, false)
	require.NoError(t, err)
	require.Len(t, first.Videos, 3)
	require.True(t, first.HasMore)

	// A new chart-topper lands between page fetches.
	store.addVideo(99, 100, created, 100000)

	second, err := svc.ForYouFeed(context.Background(), 1, first.NextCursor, 3, false)
	require.NoError(t, err)

	got := make(map[int64]bool)
	for _, v := range append(first.Videos, second.Videos...) {
		assert.False(t, got[v.VideoID], "video %d repeated across pages", v.VideoID)
		got[v.VideoID] = true
	}
	// The late arrival scores above the cursor, so it waits for a fresh
	// first page instead of shifting this continuation.
	assert.False(t, got[99])
	for i := int64(1); i <= 6; i++ {
		assert.True(t, got[i], "video %d missing", i)
	}
}

func TestForYouHideSeenFiltersCompletedWatches(t *testing.T) {
	store := newFakeFeedStore()
	created := time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)
	store.addVideo(1, 100, created, 10)
	store.addVideo(2, 100, created, 20)
	store.seen[7] = map[int64]bool{2: true}
	svc := newTestFeedService(store)

	page, err := svc.ForYouFeed(context.Background(), 7, "", 10, true)
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, int64(1), page.Videos[0].VideoID)
}

func TestForYouEmptyCandidatePool(t *testing.T) {
	svc := newTestFeedService(newFakeFeedStore())

	page, err := svc.ForYouFeed(context.Background(), 1, "", 10, false)
	require.NoError(t, err)
	assert.Empty(t, page.Videos)
	assert.False(t, page.HasMore)
}

func TestScoreMonotonicInEngagementAndRecency(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fresh := &model.Video{VideoID: 1, LikeCount: 10, CreatedAt: now.Add(-time.Hour)}
	stale := &model.Video{VideoID: 2, LikeCount: 10, CreatedAt: now.Add(-48 * time.Hour)}
	assert.Greater(t, testWeights.Score(fresh, 0, now), testWeights.Score(stale, 0, now))

	liked := &model.Video{VideoID: 3, LikeCount: 100, CreatedAt: fresh.CreatedAt}
	assert.Greater(t, testWeights.Score(liked, 0, now), testWeights.Score(fresh, 0, now))

	watched := testWeights.Score(fresh, 0.9, now)
	assert.Greater(t, watched, testWeights.Score(fresh, 0.1, now))
}

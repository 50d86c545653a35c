package service

import (
	"context"
	"sort"
	"time"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
)

type FeedService struct {
	ctx     context.Context
	store   Store
	weights Weights
	now     func() time.Time
}

func NewFeedService(ctx context.Context, store Store, weights Weights) *FeedService {
	return &FeedService{ctx: ctx, store: store, weights: weights, now: time.Now}
}

// FeedPage is one page of ranked videos.
type FeedPage struct {
	Videos     []*model.Video `json:"videos"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// FollowingFeed pages the completed videos of the users the viewer
// follows, newest first.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID int64, cursorToken string, limit int, hideSeen bool) (*FeedPage, error) {
	limit = clampLimit(limit)
	cur, err := cursor.DecodeTime(cursorToken)
	if err != nil {
		return nil, err
	}

	ownerIDs, err := s.store.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	page := &FeedPage{Videos: make([]*model.Video, 0, limit)}
	if len(ownerIDs) == 0 {
		return page, nil
	}

	// One extra row tells us whether another page exists.
	videos, err := s.store.ListFollowingVideos(ctx, viewerID, ownerIDs, cur, limit+1, hideSeen)
	if err != nil {
		return nil, err
	}
	if len(videos) > limit {
		page.HasMore = true
		videos = videos[:limit]
	}
	page.Videos = videos
	if page.HasMore {
		last := videos[len(videos)-1]
		page.NextCursor = cursor.EncodeTime(last.CreatedAt, last.VideoID)
	}
	return page, nil
}

type scoredVideo struct {
	video *model.Video
	score float64
}

// ForYouFeed ranks the recent candidate pool by engagement score and pages
// it in score-space. The cursor pins a (score, id) position, so videos that
// rise above it between pages do not repeat or shift the continuation.
func (s *FeedService) ForYouFeed(ctx context.Context, viewerID int64, cursorToken string, limit int, hideSeen bool) (*FeedPage, error) {
	limit = clampLimit(limit)
	cur, err := cursor.DecodeScore(cursorToken)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.ListCandidateVideos(ctx)
	if err != nil {
		return nil, err
	}
	page := &FeedPage{Videos: make([]*model.Video, 0, limit)}
	if len(candidates) == 0 {
		return page, nil
	}

	var seen map[int64]bool
	if hideSeen {
		if seen, err = s.store.GetSeenVideoIDs(ctx, viewerID); err != nil {
			return nil, err
		}
	}
	videoIDs := make([]int64, 0, len(candidates))
	for _, v := range candidates {
		videoIDs = append(videoIDs, v.VideoID)
	}
	completion, err := s.store.GetCompletionStats(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ranked := make([]scoredVideo, 0, len(candidates))
	for _, v := range candidates {
		if seen[v.VideoID] {
			continue
		}
		sc := s.weights.Score(v, completion[v.VideoID], now)
		if cur != nil && !after(sc, v.VideoID, cur) {
			continue
		}
		ranked = append(ranked, scoredVideo{video: v, score: sc})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].video.VideoID > ranked[j].video.VideoID
	})

	if len(ranked) > limit {
		page.HasMore = true
		ranked = ranked[:limit]
	}
	for _, sv := range ranked {
		page.Videos = append(page.Videos, sv.video)
	}
	if page.HasMore {
		last := ranked[len(ranked)-1]
		page.NextCursor = cursor.EncodeScore(last.score, last.video.VideoID)
	}
	return page, nil
}

// after reports whether (score, id) sorts strictly below the cursor in the
// descending (score, id) order.
func after(score float64, id int64, cur *cursor.ScoreCursor) bool {
	if score != cur.Score {
		return score < cur.Score
	}
	return id < cur.ID
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return limit
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/mq"
)

type RelationService struct {
	ctx      context.Context
	store    Store
	producer mq.Publisher
}

func NewRelationService(ctx context.Context, store Store, producer mq.Publisher) *RelationService {
	return &RelationService{ctx: ctx, store: store, producer: producer}
}

// UserSummary is the list-item projection of a user.
type UserSummary struct {
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     string    `json:"avatar_url"`
	FollowerCount int64     `json:"follower_count"`
	FollowedAt    time.Time `json:"followed_at"`
}

type FollowListResponse struct {
	Users      []*UserSummary `json:"users"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// Follow creates the edge. A repeated follow is an idempotent success and
// does not publish a second event.
func (s *RelationService) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return errno.InvalidStateErr.WithMessage("cannot follow yourself")
	}

	exists, err := s.store.UserExists(ctx, followingID)
	if err != nil {
		return errors.WithMessage(err, "relation: user lookup failed")
	}
	if !exists {
		return errno.RecordNotFoundErr.WithMessage("user to follow not found")
	}

	created, err := s.store.CreateFollow(ctx, followerID, followingID)
	if err != nil {
		return errors.WithMessage(err, "relation: create follow failed")
	}
	if !created {
		return nil
	}

	s.publish(ctx, mq.EventFollowAdded, followerID, followingID)
	return nil
}

// IsFollowing reports whether the viewer follows the given user.
func (s *RelationService) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	following, err := s.store.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, errors.WithMessage(err, "relation: follow lookup failed")
	}
	return following, nil
}

// Unfollow removes the edge; absence is a no-op success.
func (s *RelationService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	deleted, err := s.store.DeleteFollow(ctx, followerID, followingID)
	if err != nil {
		return errors.WithMessage(err, "relation: delete follow failed")
	}
	if deleted {
		s.publish(ctx, mq.EventFollowRemoved, followerID, followingID)
	}
	return nil
}

func (s *RelationService) ListFollowers(ctx context.Context, userID int64, cursorToken string, limit int) (*FollowListResponse, error) {
	cur, err := cursor.DecodeTime(cursorToken)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	edges, err := s.store.ListFollowerEdges(ctx, userID, cur, limit+1)
	if err != nil {
		return nil, errors.WithMessage(err, "relation: list followers failed")
	}
	return s.buildListResponse(ctx, edges, limit, func(e *model.Follow) int64 { return e.FollowerID })
}

func (s *RelationService) ListFollowing(ctx context.Context, userID int64, cursorToken string, limit int) (*FollowListResponse, error) {
	cur, err := cursor.DecodeTime(cursorToken)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	edges, err := s.store.ListFollowingEdges(ctx, userID, cur, limit+1)
	if err != nil {
		return nil, errors.WithMessage(err, "relation: list following failed")
	}
	return s.buildListResponse(ctx, edges, limit, func(e *model.Follow) int64 { return e.FollowingID })
}

func (s *RelationService) buildListResponse(ctx context.Context, edges []*model.Follow, limit int, pick func(*model.Follow) int64) (*FollowListResponse, error) {
	hasMore := len(edges) > limit
	if hasMore {
		edges = edges[:limit]
	}

	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, pick(e))
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, errors.WithMessage(err, "relation: load users failed")
	}
	byID := make(map[int64]*model.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	resp := &FollowListResponse{
		Users:   make([]*UserSummary, 0, len(edges)),
		HasMore: hasMore,
	}
	for _, e := range edges {
		u, ok := byID[pick(e)]
		if !ok {
			continue
		}
		resp.Users = append(resp.Users, &UserSummary{
			UserID:        u.UserID,
			Username:      u.Username,
			DisplayName:   u.DisplayName,
			AvatarURL:     u.AvatarURL,
			FollowerCount: u.FollowerCount,
			FollowedAt:    e.CreatedAt,
		})
	}
	if hasMore && len(edges) > 0 {
		last := edges[len(edges)-1]
		resp.NextCursor = cursor.EncodeTime(last.CreatedAt, last.FollowID)
	}
	return resp, nil
}

func (s *RelationService) publish(ctx context.Context, eventType string, followerID, followingID int64) {
	if s.producer == nil {
		return
	}
	event := &mq.EngagementEvent{
		EventID:      uuid.New().String(),
		Type:         eventType,
		ActorID:      followerID,
		TargetUserID: followingID,
		Timestamp:    time.Now().Unix(),
	}
	if err := s.producer.PublishEngagementEvent(ctx, event); err != nil {
		// The edge and counters are already committed; the event only
		// drives notifications, so log and move on.
		logrus.Errorf("relation: publish %s failed: %v", eventType, err)
	}
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

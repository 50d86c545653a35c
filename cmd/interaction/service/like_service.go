package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	infraredis "clipstream.com/cmd/interaction/infras/redis"
	"clipstream.com/cmd/model"
	"clipstream.com/pkg/mq"
	"clipstream.com/pkg/utils"
)

type LikeService struct {
	ctx      context.Context
	store    Store
	cache    *infraredis.LikeCacheManager
	producer mq.Publisher
}

// NewLikeService wires the like path. cache may be nil; the DB ledger is
// authoritative either way.
func NewLikeService(ctx context.Context, store Store, cache *infraredis.LikeCacheManager, producer mq.Publisher) *LikeService {
	return &LikeService{ctx: ctx, store: store, cache: cache, producer: producer}
}

type LikeResponse struct {
	VideoID int64 `json:"video_id"`
	Liked   bool  `json:"liked"`
}

// SetLike drives the edge to the requested state. Both directions are
// idempotent: a like on an already-liked video and an unlike on a
// never-liked one succeed without emitting an event. Concurrency is settled
// by the unique edge constraint, not by application locks.
func (s *LikeService) SetLike(ctx context.Context, userID, videoID int64, liked bool) (*LikeResponse, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, errors.WithMessage(err, "interaction: video lookup failed")
	}

	if liked {
		created, err := s.store.CreateLike(ctx, &model.VideoLike{
			LikeID:    utils.GenID(),
			UserID:    userID,
			VideoID:   videoID,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return nil, errors.WithMessage(err, "interaction: create like failed")
		}
		if created {
			s.cacheAdd(ctx, userID, videoID)
			s.publish(ctx, mq.EventLikeAdded, userID, video)
		}
		return &LikeResponse{VideoID: videoID, Liked: true}, nil
	}

	deleted, err := s.store.DeleteLike(ctx, userID, videoID)
	if err != nil {
		return nil, errors.WithMessage(err, "interaction: delete like failed")
	}
	if deleted {
		s.cacheRemove(ctx, userID, videoID)
		s.publish(ctx, mq.EventLikeRemoved, userID, video)
	}
	return &LikeResponse{VideoID: videoID, Liked: false}, nil
}

// ToggleLike flips the current state and returns the resulting one.
func (s *LikeService) ToggleLike(ctx context.Context, userID, videoID int64) (*LikeResponse, error) {
	liked, err := s.isLiked(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	return s.SetLike(ctx, userID, videoID, !liked)
}

func (s *LikeService) IsLiked(ctx context.Context, userID, videoID int64) (bool, error) {
	return s.isLiked(ctx, userID, videoID)
}

func (s *LikeService) isLiked(ctx context.Context, userID, videoID int64) (bool, error) {
	if s.cache != nil {
		if liked, known := s.cache.IsVideoLikedByUser(ctx, userID, videoID); known {
			return liked, nil
		}
	}
	liked, err := s.store.IsLiked(ctx, userID, videoID)
	if err != nil {
		return false, errors.WithMessage(err, "interaction: like lookup failed")
	}
	return liked, nil
}

func (s *LikeService) cacheAdd(ctx context.Context, userID, videoID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.AddUserLike(ctx, userID, videoID); err != nil {
		logrus.Warnf("interaction: like cache add failed: %v", err)
	}
}

func (s *LikeService) cacheRemove(ctx context.Context, userID, videoID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.RemoveUserLike(ctx, userID, videoID); err != nil {
		logrus.Warnf("interaction: like cache remove failed: %v", err)
	}
}

func (s *LikeService) publish(ctx context.Context, eventType string, userID int64, video *model.Video) {
	if s.producer == nil {
		return
	}
	event := &mq.EngagementEvent{
		EventID:      uuid.New().String(),
		Type:         eventType,
		ActorID:      userID,
		TargetUserID: video.UserID,
		VideoID:      video.VideoID,
		Timestamp:    time.Now().Unix(),
	}
	if err := s.producer.PublishEngagementEvent(ctx, event); err != nil {
		logrus.Errorf("interaction: publish %s failed: %v", eventType, err)
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/mq"
	"clipstream.com/pkg/utils"
)

type WatchService struct {
	ctx      context.Context
	store    Store
	producer mq.Publisher
}

func NewWatchService(ctx context.Context, store Store, producer mq.Publisher) *WatchService {
	return &WatchService{ctx: ctx, store: store, producer: producer}
}

// RecordWatch upserts the per (user, video) watch progress that feeds the
// ranking signal and the hide-seen preference. Completion is derived here
// so clients cannot report a completed state that contradicts watch time.
func (s *WatchService) RecordWatch(ctx context.Context, userID, videoID, watchTime int64) error {
	if watchTime < 0 {
		return errno.ParamErr.WithMessage("watch_time must be non-negative")
	}
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return errors.WithMessage(err, "interaction: video lookup failed")
	}

	completed := video.Duration > 0 && watchTime >= video.Duration
	now := time.Now()
	interaction := &model.UserInteraction{
		InteractionID: utils.GenID(),
		UserID:        userID,
		VideoID:       videoID,
		WatchTime:     watchTime,
		Completed:     completed,
		UpdatedAt:     now,
	}
	if err := s.store.UpsertInteraction(ctx, interaction); err != nil {
		return errors.WithMessage(err, "interaction: upsert watch failed")
	}

	if s.producer != nil {
		event := &mq.EngagementEvent{
			EventID:      uuid.New().String(),
			Type:         mq.EventWatchRecorded,
			ActorID:      userID,
			TargetUserID: video.UserID,
			VideoID:      videoID,
			WatchTime:    watchTime,
			Completed:    completed,
			Timestamp:    now.Unix(),
		}
		if err := s.producer.PublishEngagementEvent(ctx, event); err != nil {
			logrus.Errorf("interaction: publish watch event failed: %v", err)
		}
	}
	return nil
}

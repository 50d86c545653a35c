package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/mq"
	"clipstream.com/pkg/utils"
)

type ShareService struct {
	ctx      context.Context
	store    Store
	producer mq.Publisher
}

func NewShareService(ctx context.Context, store Store, producer mq.Publisher) *ShareService {
	return &ShareService{ctx: ctx, store: store, producer: producer}
}

// AddShare appends a share event. Shares are never deduplicated: the same
// user sharing twice counts twice.
func (s *ShareService) AddShare(ctx context.Context, userID, videoID int64) error {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return errors.WithMessage(err, "interaction: video lookup failed")
	}

	share := &model.VideoShare{
		ShareID:   utils.GenID(),
		UserID:    userID,
		VideoID:   videoID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateShare(ctx, share); err != nil {
		return errors.WithMessage(err, "interaction: create share failed")
	}

	if s.producer != nil {
		event := &mq.EngagementEvent{
			EventID:      uuid.New().String(),
			Type:         mq.EventShareAdded,
			ActorID:      userID,
			TargetUserID: video.UserID,
			VideoID:      videoID,
			Timestamp:    time.Now().Unix(),
		}
		if err := s.producer.PublishEngagementEvent(ctx, event); err != nil {
			logrus.Errorf("interaction: publish share event failed: %v", err)
		}
	}
	return nil
}

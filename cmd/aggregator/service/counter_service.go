package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/aggregator/dal/db"
	"clipstream.com/pkg/cache"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/mq"
)

// CounterStore applies bounded counter deltas atomically at the storage
// layer. Production delegates to dal/db; tests use an in-memory fake.
type CounterStore interface {
	ApplyVideoDelta(ctx context.Context, videoID int64, column string, delta int64) error
	ApplyUserDelta(ctx context.Context, userID int64, column string, delta int64) error
}

// EventMarker records applied event ids. MarkApplied returns false when the
// event was seen before, which turns redeliveries and replays into no-ops.
// Unmark releases an id whose deltas failed to land, so the broker's
// redelivery gets a fresh attempt instead of a silent skip.
type EventMarker interface {
	MarkApplied(ctx context.Context, eventID string) (first bool, err error)
	Unmark(ctx context.Context, eventID string) error
}

type dbCounterStore struct{}

func NewDBCounterStore() CounterStore {
	return dbCounterStore{}
}

func (dbCounterStore) ApplyVideoDelta(ctx context.Context, videoID int64, column string, delta int64) error {
	return db.ApplyVideoDelta(ctx, videoID, column, delta)
}

func (dbCounterStore) ApplyUserDelta(ctx context.Context, userID int64, column string, delta int64) error {
	return db.ApplyUserDelta(ctx, userID, column, delta)
}

type redisEventMarker struct {
	client redis.Cmdable
}

func NewRedisEventMarker() EventMarker {
	return &redisEventMarker{client: cache.AggregatorClient}
}

func (m *redisEventMarker) MarkApplied(ctx context.Context, eventID string) (bool, error) {
	return m.client.SetNX(ctx, constants.EventAppliedKeyPrefix+eventID, 1, constants.EventAppliedTTL).Result()
}

func (m *redisEventMarker) Unmark(ctx context.Context, eventID string) error {
	return m.client.Del(ctx, constants.EventAppliedKeyPrefix+eventID).Err()
}

// CounterService turns the engagement event stream into counter deltas.
type CounterService struct {
	store  CounterStore
	marker EventMarker
}

func NewCounterService(store CounterStore, marker EventMarker) *CounterService {
	return &CounterService{store: store, marker: marker}
}

// Handle applies one event. Safe to call any number of times with the same
// event id; only the first application changes state.
func (s *CounterService) Handle(ctx context.Context, event *mq.EngagementEvent) error {
	first, err := s.marker.MarkApplied(ctx, event.EventID)
	if err != nil {
		return errors.WithMessage(err, "aggregator: idempotency check failed")
	}
	if !first {
		logrus.Debugf("aggregator: event %s already applied, skipping", event.EventID)
		return nil
	}

	if err := s.apply(ctx, event); err != nil {
		// Give the redelivery a clean slate; a stuck marker would turn a
		// transient storage failure into a permanently lost delta. A
		// half-applied pair can double-count on the retry, which the
		// reconcile pass repairs from the source ledgers.
		if unmarkErr := s.marker.Unmark(ctx, event.EventID); unmarkErr != nil {
			logrus.Errorf("aggregator: unmark %s failed: %v", event.EventID, unmarkErr)
		}
		return err
	}
	return nil
}

func (s *CounterService) apply(ctx context.Context, event *mq.EngagementEvent) error {
	switch event.Type {
	case mq.EventLikeAdded:
		if err := s.store.ApplyVideoDelta(ctx, event.VideoID, "like_count", 1); err != nil {
			return err
		}
		return s.store.ApplyUserDelta(ctx, event.TargetUserID, "total_likes", 1)
	case mq.EventLikeRemoved:
		if err := s.store.ApplyVideoDelta(ctx, event.VideoID, "like_count", -1); err != nil {
			return err
		}
		return s.store.ApplyUserDelta(ctx, event.TargetUserID, "total_likes", -1)
	case mq.EventCommentAdded:
		return s.store.ApplyVideoDelta(ctx, event.VideoID, "comment_count", 1)
	case mq.EventShareAdded:
		return s.store.ApplyVideoDelta(ctx, event.VideoID, "share_count", 1)
	case mq.EventWatchRecorded:
		return s.store.ApplyVideoDelta(ctx, event.VideoID, "view_count", 1)
	case mq.EventVideoCreated:
		return s.store.ApplyUserDelta(ctx, event.TargetUserID, "video_count", 1)
	case mq.EventFollowAdded, mq.EventFollowRemoved:
		// Follow counters move inside the graph-store transaction; the
		// event only drives notifications.
		return nil
	default:
		logrus.Warnf("aggregator: ignoring unknown event type %q", event.Type)
		return nil
	}
}

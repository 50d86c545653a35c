package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/feed/dal/db"
	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
)

// TrendingJob refreshes the hashtag aggregates on a cadence. The scores are
// derived data; losing a pass only delays the refresh.
type TrendingJob struct {
	interval time.Duration
	window   time.Duration
}

func NewTrendingJob() *TrendingJob {
	return &TrendingJob{
		interval: constants.TrendingRecomputeInterval,
		window:   constants.TrendingWindow,
	}
}

// Run blocks until ctx is done.
func (t *TrendingJob) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := db.RecomputeHashtagStats(ctx, t.window); err != nil {
				logrus.Errorf("feed: trending recompute failed: %v", err)
				continue
			}
			logrus.Infof("feed: trending recompute done in %s", time.Since(start))
		}
	}
}

// TrendingHashtags returns the current top hashtags by trending score.
func TrendingHashtags(ctx context.Context, limit int) ([]*model.Hashtag, error) {
	return db.GetTrendingHashtags(ctx, clampLimit(limit))
}

package service

import (
	"math"
	"time"

	"clipstream.com/cmd/model"
	"clipstream.com/config"
)

// Weights holds the ranking coefficients for the for-you feed.
type Weights struct {
	Like     float64
	View     float64
	Comment  float64
	Share    float64
	Watch    float64
	Recency  float64
	HalfLife time.Duration
}

// WeightsFromConfig snapshots the configured coefficients.
func WeightsFromConfig() Weights {
	f := config.ConfigInfo.Feed
	return Weights{
		Like:     f.LikeWeight,
		View:     f.ViewWeight,
		Comment:  f.CommentWeight,
		Share:    f.ShareWeight,
		Watch:    f.WatchWeight,
		Recency:  f.RecencyWeight,
		HalfLife: f.HalfLife,
	}
}

// Score ranks a video by log-damped engagement counters plus an
// exponentially decaying freshness bonus. completion is the share of
// watchers who finished the video, in [0, 1].
func (w Weights) Score(v *model.Video, completion float64, now time.Time) float64 {
	s := w.Like*math.Log1p(float64(v.LikeCount)) +
		w.View*math.Log1p(float64(v.ViewCount)) +
		w.Comment*math.Log1p(float64(v.CommentCount)) +
		w.Share*math.Log1p(float64(v.ShareCount)) +
		w.Watch*completion
	age := now.Sub(v.CreatedAt)
	if age < 0 {
		age = 0
	}
	halfLife := w.HalfLife
	if halfLife <= 0 {
		halfLife = 6 * time.Hour
	}
	s += w.Recency * math.Exp(-math.Ln2*age.Hours()/halfLife.Hours())
	return s
}

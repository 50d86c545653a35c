package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/mq"
)

const (
	maxTitleLength = 256
	maxHashtags    = 10
)

type VideoService struct {
	ctx      context.Context
	store    Store
	producer mq.Publisher
}

func NewVideoService(ctx context.Context, store Store, producer mq.Publisher) *VideoService {
	return &VideoService{ctx: ctx, store: store, producer: producer}
}

type PublishVideoRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	VideoURL    string   `json:"video_url"`
	CoverURL    string   `json:"cover_url"`
	Duration    int64    `json:"duration"`
	Hashtags    []string `json:"hashtags"`
}

// Publish records a new video in the processing state. Feeds and candidate
// pools only serve completed videos, so nothing surfaces until Complete
// flips the status.
func (s *VideoService) Publish(ctx context.Context, userID int64, req *PublishVideoRequest) (*model.Video, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return nil, errno.ParamErr.WithMessage("invalid title")
	}
	if req.VideoURL == "" {
		return nil, errno.ParamErr.WithMessage("video_url is required")
	}
	if req.Duration < 0 {
		return nil, errno.ParamErr.WithMessage("duration cannot be negative")
	}

	tags := normalizeHashtags(req.Hashtags)
	video := &model.Video{
		UserID:           userID,
		Title:            title,
		Description:      req.Description,
		VideoURL:         req.VideoURL,
		CoverURL:         req.CoverURL,
		Duration:         req.Duration,
		ProcessingStatus: constants.VideoStatusProcessing,
		CreatedAt:        time.Now(),
	}
	if err := s.store.CreateVideo(ctx, video, tags); err != nil {
		return nil, err
	}
	return video, nil
}

// Complete transitions the owner's video to the completed state and
// announces it to the aggregation pipeline. Re-completing is an idempotent
// success and does not publish a second event.
func (s *VideoService) Complete(ctx context.Context, userID, videoID int64) (*model.Video, error) {
	video, err := s.store.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, errno.RecordNotFoundErr.WithMessage("video not found")
	}
	if video.UserID != userID {
		return nil, errno.AuthorizationFailedErr.WithMessage("not the video owner")
	}
	if video.ProcessingStatus == constants.VideoStatusCompleted {
		return video, nil
	}

	if err := s.store.MarkVideoCompleted(ctx, videoID); err != nil {
		return nil, err
	}
	video.ProcessingStatus = constants.VideoStatusCompleted

	event := &mq.EngagementEvent{
		EventID:      uuid.NewString(),
		Type:         mq.EventVideoCreated,
		ActorID:      userID,
		TargetUserID: userID,
		VideoID:      video.VideoID,
		Timestamp:    time.Now().UnixMilli(),
	}
	if err := s.producer.PublishEngagementEvent(ctx, event); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) GetVideo(ctx context.Context, videoID int64) (*model.Video, error) {
	video, err := s.store.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, errno.RecordNotFoundErr.WithMessage("video not found")
	}
	return video, nil
}

func (s *VideoService) ListUserVideos(ctx context.Context, userID int64, limit, offset int) ([]*model.Video, error) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListUserVideos(ctx, userID, limit, offset)
}

// normalizeHashtags lowercases, strips the leading '#', drops empties and
// duplicates, and caps the tag count.
func normalizeHashtags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxHashtags {
			break
		}
	}
	return tags
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clipstream.com/cmd/model"
	"clipstream.com/config"
	"clipstream.com/pkg/database"
	"clipstream.com/pkg/mq"
)

const VideoIndex = "clipstream_videos"

const videoMapping = `{
	"mappings": {
		"properties": {
			"video_id":    {"type": "long"},
			"user_id":     {"type": "long"},
			"title":       {"type": "text"},
			"description": {"type": "text"},
			"like_count":  {"type": "long"},
			"created_at":  {"type": "date"}
		}
	}
}`

// VideoDoc is the search projection of a video.
type VideoDoc struct {
	VideoID     int64     `json:"video_id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LikeCount   int64     `json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Indexer mirrors video documents into Elasticsearch off the engagement
// stream. Indexing is best effort: a lost update is repaired by the next
// event touching the same video.
type Indexer struct {
	client *elastic.Client
	db     *gorm.DB
}

func NewIndexer() (*Indexer, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(config.ConfigInfo.Elastic.Addr),
		elastic.SetSniff(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	idx := &Indexer{client: client, db: database.GetDB()}
	if err := idx.ensureIndex(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *Indexer) ensureIndex(ctx context.Context) error {
	exists, err := i.client.IndexExists(VideoIndex).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = i.client.CreateIndex(VideoIndex).BodyString(videoMapping).Do(ctx)
	return err
}

// Handle refreshes the document for the event's video. Events without a
// video and failures are both swallowed so the search queue never wedges
// the bus.
func (i *Indexer) Handle(ctx context.Context, event *mq.EngagementEvent) error {
	if event.VideoID == 0 {
		return nil
	}
	if err := i.indexVideo(ctx, event.VideoID); err != nil {
		logrus.Warnf("search: index video %d failed: %v", event.VideoID, err)
	}
	return nil
}

func (i *Indexer) indexVideo(ctx context.Context, videoID int64) error {
	var video model.Video
	err := i.db.WithContext(ctx).Where("video_id = ?", videoID).Take(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_, err = i.client.Delete().Index(VideoIndex).
			Id(strconv.FormatInt(videoID, 10)).Do(ctx)
		if elastic.IsNotFound(err) {
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	doc := VideoDoc{
		VideoID:     video.VideoID,
		UserID:      video.UserID,
		Title:       video.Title,
		Description: video.Description,
		LikeCount:   video.LikeCount,
		CreatedAt:   video.CreatedAt,
	}
	_, err = i.client.Index().Index(VideoIndex).
		Id(strconv.FormatInt(videoID, 10)).
		BodyJson(doc).Do(ctx)
	return err
}

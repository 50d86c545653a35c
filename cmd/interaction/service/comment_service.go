package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/model"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/cursor"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/mq"
	"clipstream.com/pkg/utils"
)

type CommentService struct {
	ctx      context.Context
	store    Store
	producer mq.Publisher
}

func NewCommentService(ctx context.Context, store Store, producer mq.Publisher) *CommentService {
	return &CommentService{ctx: ctx, store: store, producer: producer}
}

// CommentNode carries a comment with its immediate replies, oldest first.
type CommentNode struct {
	model.Comment
	Replies []*model.Comment `json:"replies"`
}

type CommentListResponse struct {
	Comments   []*CommentNode `json:"comments"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// AddComment appends a comment. A reply must name a parent on the same
// video; nesting depth is unbounded in storage, delivery shows one level.
func (s *CommentService) AddComment(ctx context.Context, userID, videoID int64, text string, parentID int64) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errno.ParamErr.WithMessage("comment text is required")
	}
	if len(text) > constants.MaxCommentLength {
		return nil, errno.ParamErr.WithMessage("comment text too long")
	}

	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, errors.WithMessage(err, "interaction: video lookup failed")
	}

	// Replies notify the parent comment's author instead of the video owner.
	notifyUserID := video.UserID
	if parentID != 0 {
		parent, err := s.store.GetComment(ctx, parentID)
		if err != nil {
			return nil, errors.WithMessage(err, "interaction: parent comment lookup failed")
		}
		if parent.VideoID != videoID {
			return nil, errno.InvalidStateErr.WithMessage("parent comment belongs to a different video")
		}
		notifyUserID = parent.UserID
	}

	comment := &model.Comment{
		CommentID: utils.GenID(),
		UserID:    userID,
		VideoID:   videoID,
		ParentID:  parentID,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, errors.WithMessage(err, "interaction: create comment failed")
	}

	s.publishComment(ctx, userID, notifyUserID, video, comment)
	return comment, nil
}

// ListComments pages top-level comments newest first, each carrying its
// replies in chronological conversation order.
func (s *CommentService) ListComments(ctx context.Context, videoID int64, cursorToken string, limit int) (*CommentListResponse, error) {
	cur, err := cursor.DecodeTime(cursorToken)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	if _, err := s.store.GetVideo(ctx, videoID); err != nil {
		return nil, errors.WithMessage(err, "interaction: video lookup failed")
	}

	comments, err := s.store.ListTopLevelComments(ctx, videoID, cur, limit+1)
	if err != nil {
		return nil, errors.WithMessage(err, "interaction: list comments failed")
	}

	hasMore := len(comments) > limit
	if hasMore {
		comments = comments[:limit]
	}

	parentIDs := make([]int64, 0, len(comments))
	for _, c := range comments {
		parentIDs = append(parentIDs, c.CommentID)
	}
	replies, err := s.store.ListReplies(ctx, videoID, parentIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "interaction: list replies failed")
	}
	byParent := make(map[int64][]*model.Comment, len(parentIDs))
	for _, r := range replies {
		byParent[r.ParentID] = append(byParent[r.ParentID], r)
	}

	resp := &CommentListResponse{
		Comments: make([]*CommentNode, 0, len(comments)),
		HasMore:  hasMore,
	}
	for _, c := range comments {
		node := &CommentNode{Comment: *c, Replies: byParent[c.CommentID]}
		if node.Replies == nil {
			node.Replies = make([]*model.Comment, 0)
		}
		resp.Comments = append(resp.Comments, node)
	}
	if hasMore && len(comments) > 0 {
		last := comments[len(comments)-1]
		resp.NextCursor = cursor.EncodeTime(last.CreatedAt, last.CommentID)
	}
	return resp, nil
}

func (s *CommentService) publishComment(ctx context.Context, userID, notifyUserID int64, video *model.Video, comment *model.Comment) {
	if s.producer == nil {
		return
	}
	event := &mq.EngagementEvent{
		EventID:      uuid.New().String(),
		Type:         mq.EventCommentAdded,
		ActorID:      userID,
		TargetUserID: notifyUserID,
		VideoID:      video.VideoID,
		CommentID:    comment.CommentID,
		ParentID:     comment.ParentID,
		Timestamp:    time.Now().Unix(),
	}
	if err := s.producer.PublishEngagementEvent(ctx, event); err != nil {
		logrus.Errorf("interaction: publish comment event failed: %v", err)
	}
}

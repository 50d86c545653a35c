package mq

import "context"

// Publisher is what the write-path services depend on.
type Publisher interface {
	PublishEngagementEvent(ctx context.Context, event *EngagementEvent) error
}

var _ Publisher = (*Producer)(nil)

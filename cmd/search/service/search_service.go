package service

import (
	"context"
	"encoding/json"

	"github.com/olivere/elastic/v7"

	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/errno"
)

type SearchService struct {
	client *elastic.Client
}

func NewSearchService(client *elastic.Client) *SearchService {
	return &SearchService{client: client}
}

// Client exposes the underlying connection for sharing with the indexer.
func (i *Indexer) Client() *elastic.Client {
	return i.client
}

type SearchResult struct {
	Videos []VideoDoc `json:"videos"`
	Total  int64      `json:"total"`
}

// SearchVideos matches the query against titles and descriptions, boosting
// titles, with offset pagination. Search is an auxiliary surface: offsets
// are fine here and deep pages are capped by Elasticsearch itself.
func (s *SearchService) SearchVideos(ctx context.Context, query string, offset, limit int) (*SearchResult, error) {
	if query == "" {
		return nil, errno.ParamErr.WithMessage("query is required")
	}
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	q := elastic.NewMultiMatchQuery(query, "title^2", "description")
	resp, err := s.client.Search().
		Index(VideoIndex).
		Query(q).
		From(offset).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, errno.TransientErr.WithMessage("search backend unavailable")
	}

	result := &SearchResult{
		Videos: make([]VideoDoc, 0, limit),
		Total:  resp.TotalHits(),
	}
	for _, hit := range resp.Hits.Hits {
		var doc VideoDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}
		result.Videos = append(result.Videos, doc)
	}
	return result, nil
}

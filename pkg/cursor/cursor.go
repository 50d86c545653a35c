package cursor

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"clipstream.com/pkg/errno"
)

// TimeCursor marks a position in a (created_at, id) descending keyset.
// Both fields are needed: created_at alone cannot break ties between rows
// inserted in the same millisecond.
type TimeCursor struct {
	CreatedAt int64 `json:"t"` // unix milliseconds
	ID        int64 `json:"i"`
}

// ScoreCursor marks a position in score-space for the for-you feed. Rows
// inserted above the cursor after the page was served do not shift the
// continuation point.
type ScoreCursor struct {
	Score float64 `json:"s"`
	ID    int64   `json:"i"`
}

func EncodeTime(createdAt time.Time, id int64) string {
	return encode(TimeCursor{CreatedAt: createdAt.UnixMilli(), ID: id})
}

func DecodeTime(token string) (*TimeCursor, error) {
	if token == "" {
		return nil, nil
	}
	var c TimeCursor
	if err := decode(token, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func EncodeScore(score float64, id int64) string {
	return encode(ScoreCursor{Score: score, ID: id})
}

func DecodeScore(token string) (*ScoreCursor, error) {
	if token == "" {
		return nil, nil
	}
	var c ScoreCursor
	if err := decode(token, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *TimeCursor) Time() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

func encode(v interface{}) string {
	b, _ := json.Marshal(v)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(token string, v interface{}) error {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return errno.ParamErr.WithMessage("invalid cursor")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errno.ParamErr.WithMessage("invalid cursor")
	}
	return nil
}

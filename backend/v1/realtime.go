package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ChangeEvent is one row-level change reported by the backend feed.
type ChangeEvent struct {
	ID        int64           `json:"id"`
	Table     string          `json:"table"`
	Type      string          `json:"type"` // INSERT | UPDATE | DELETE
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"oldRecord,omitempty"`
}

// RealtimeEndpoint long-polls the backend change feed. The cursor is the
// last event ID seen; the backend holds the request open up to wait when
// nothing newer exists.
type RealtimeEndpoint struct {
	transport *Transport
}

type pollEnvelope struct {
	Data struct {
		Events []ChangeEvent `json:"events"`
		Cursor int64         `json:"cursor"`
	} `json:"data"`
}

func (r *RealtimeEndpoint) Poll(ctx context.Context, table, filter string, cursor int64, wait time.Duration) ([]ChangeEvent, int64, error) {
	query := url.Values{
		"table":  {table},
		"cursor": {strconv.FormatInt(cursor, 10)},
		"wait":   {strconv.Itoa(int(wait.Seconds()))},
	}
	if filter != "" {
		query.Set("filter", filter)
	}

	resp, err := r.transport.Get(ctx, "/api/v1/realtime/poll", query)
	if err != nil {
		return nil, cursor, err
	}

	var env pollEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, cursor, fmt.Errorf("realtime poll: decode: %w", err)
	}
	return env.Data.Events, env.Data.Cursor, nil
}

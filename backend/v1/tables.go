package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query builds PostgREST-style filter chains: Eq/Neq/Gte/Lte/In narrow the
// row set, Order and Limit shape it.
type Query struct {
	filters []string
	order   string
	limit   int
}

func NewQuery() *Query {
	return &Query{}
}

func (q *Query) Eq(column, value string) *Query {
	q.filters = append(q.filters, column+"=eq."+value)
	return q
}

func (q *Query) Neq(column, value string) *Query {
	q.filters = append(q.filters, column+"=neq."+value)
	return q
}

func (q *Query) Gte(column, value string) *Query {
	q.filters = append(q.filters, column+"=gte."+value)
	return q
}

func (q *Query) Lte(column, value string) *Query {
	q.filters = append(q.filters, column+"=lte."+value)
	return q
}

func (q *Query) In(column string, values ...string) *Query {
	q.filters = append(q.filters, column+"=in.("+strings.Join(values, ",")+")")
	return q
}

func (q *Query) Order(column string, descending bool) *Query {
	q.order = column
	if descending {
		q.order += ".desc"
	}
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Filter returns the canonical filter string, also used as the realtime
// subscription scope so that equal queries share one channel.
func (q *Query) Filter() string {
	if q == nil || len(q.filters) == 0 {
		return ""
	}
	sorted := append([]string(nil), q.filters...)
	sort.Strings(sorted)
	return strings.Join(sorted, "&")
}

func (q *Query) values() url.Values {
	vals := url.Values{}
	if q == nil {
		return vals
	}
	for _, f := range q.filters {
		parts := strings.SplitN(f, "=", 2)
		vals.Add(parts[0], parts[1])
	}
	if q.order != "" {
		vals.Set("order", q.order)
	}
	if q.limit > 0 {
		vals.Set("limit", strconv.Itoa(q.limit))
	}
	return vals
}

type TableEndpoint struct {
	transport *Transport
	table     string
}

type rowsEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

type rowEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (t *TableEndpoint) path() string {
	return "/api/v1/tables/" + t.table
}

// Select returns the raw rows matching q (q may be nil for all rows).
func (t *TableEndpoint) Select(ctx context.Context, q *Query) ([]json.RawMessage, error) {
	resp, err := t.transport.Get(ctx, t.path(), q.values())
	if err != nil {
		return nil, err
	}
	var env rowsEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("select %s: decode: %w", t.table, err)
	}
	return env.Data, nil
}

// SelectSingle returns the first matching row, or an error when none match.
func (t *TableEndpoint) SelectSingle(ctx context.Context, q *Query) (json.RawMessage, error) {
	if q == nil {
		q = NewQuery()
	}
	rows, err := t.Select(ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &APIError{Status: 404, Code: "not_found", Message: fmt.Sprintf("no %s row matched", t.table)}
	}
	return rows[0], nil
}

// Insert creates a row and returns the stored copy.
func (t *TableEndpoint) Insert(ctx context.Context, row any) (json.RawMessage, error) {
	resp, err := t.transport.Post(ctx, t.path(), row, nil)
	if err != nil {
		return nil, err
	}
	var env rowEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("insert %s: decode: %w", t.table, err)
	}
	return env.Data, nil
}

// Upsert inserts or replaces by primary key. Used by the offline reconcile
// pass, where the row may or may not have reached the backend before.
func (t *TableEndpoint) Upsert(ctx context.Context, row any) (json.RawMessage, error) {
	resp, err := t.transport.Post(ctx, t.path(), row, url.Values{"upsert": {"true"}})
	if err != nil {
		return nil, err
	}
	var env rowEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("upsert %s: decode: %w", t.table, err)
	}
	return env.Data, nil
}

// Update patches every row matching q and returns the updated rows.
func (t *TableEndpoint) Update(ctx context.Context, q *Query, patch any) ([]json.RawMessage, error) {
	resp, err := t.transport.Patch(ctx, t.path(), patch, q.values())
	if err != nil {
		return nil, err
	}
	var env rowsEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("update %s: decode: %w", t.table, err)
	}
	return env.Data, nil
}

// Delete removes every row matching q.
func (t *TableEndpoint) Delete(ctx context.Context, q *Query) error {
	_, err := t.transport.Delete(ctx, t.path(), q.values())
	return err
}

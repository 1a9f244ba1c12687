package mock

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// condition is one parsed filter, e.g. status=eq.pending.
type condition struct {
	column string
	op     string
	value  string
}

func parseCondition(column, expr string) (condition, bool) {
	op, value, found := strings.Cut(expr, ".")
	if !found {
		return condition{}, false
	}
	switch op {
	case "eq", "neq", "gte", "lte", "in":
	default:
		return condition{}, false
	}
	return condition{column: column, op: op, value: value}, true
}

func fieldString(row map[string]any, column string) (string, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func (cond condition) matches(row map[string]any) bool {
	got, ok := fieldString(row, cond.column)
	switch cond.op {
	case "eq":
		return ok && got == cond.value
	case "neq":
		return !ok || got != cond.value
	case "gte":
		return ok && compareValues(got, cond.value) >= 0
	case "lte":
		return ok && compareValues(got, cond.value) <= 0
	case "in":
		if !ok {
			return false
		}
		list := strings.TrimSuffix(strings.TrimPrefix(cond.value, "("), ")")
		for _, candidate := range strings.Split(list, ",") {
			if got == strings.TrimSpace(candidate) {
				return true
			}
		}
		return false
	}
	return false
}

// compareValues orders numerically when both sides parse as numbers,
// lexicographically otherwise. Dates in 2006-01-02 form order correctly as
// strings.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func parseConditions(c *gin.Context) []condition {
	conds := make([]condition, 0)
	for column, values := range c.Request.URL.Query() {
		switch column {
		case "order", "limit", "upsert":
			continue
		}
		for _, expr := range values {
			if cond, ok := parseCondition(column, expr); ok {
				conds = append(conds, cond)
			}
		}
	}
	return conds
}

func matchesAll(row map[string]any, conds []condition) bool {
	for _, cond := range conds {
		if !cond.matches(row) {
			return false
		}
	}
	return true
}

// matchesFilterExpr evaluates a canonical filter string such as
// "employeeId=eq.e1&status=eq.pending" against a record. Used by the
// realtime poll, which carries the filter as one query value.
func matchesFilterExpr(row map[string]any, filter string) bool {
	if row == nil {
		return false
	}
	for _, part := range strings.Split(filter, "&") {
		column, expr, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		cond, ok := parseCondition(column, expr)
		if !ok {
			continue
		}
		if !cond.matches(row) {
			return false
		}
	}
	return true
}

func (s *Server) handleSelect(c *gin.Context) {
	table := c.Param("table")
	conds := parseConditions(c)

	s.mu.Lock()
	rows := make([]map[string]any, 0)
	for _, row := range s.tables[table] {
		if matchesAll(row, conds) {
			rows = append(rows, row)
		}
	}
	s.mu.Unlock()

	if order := c.Query("order"); order != "" {
		column, dir, _ := strings.Cut(order, ".")
		desc := dir == "desc"
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := fieldString(rows[i], column)
			b, _ := fieldString(rows[j], column)
			if desc {
				return compareValues(a, b) > 0
			}
			return compareValues(a, b) < 0
		})
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 && limit < len(rows) {
			rows = rows[:limit]
		}
	}

	c.JSON(200, gin.H{"data": rows})
}

func (s *Server) handleInsert(c *gin.Context) {
	table := c.Param("table")
	upsert := c.Query("upsert") == "true"

	var row map[string]any
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(400, gin.H{"message": "invalid row payload"})
		return
	}
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if upsert {
		id, _ := fieldString(row, "id")
		for i, existing := range s.tables[table] {
			existingID, _ := fieldString(existing, "id")
			if existingID == id {
				s.tables[table][i] = row
				s.recordChange(table, "UPDATE", row, existing)
				c.JSON(200, gin.H{"data": row})
				return
			}
		}
	}

	s.tables[table] = append(s.tables[table], row)
	s.recordChange(table, "INSERT", row, nil)
	c.JSON(201, gin.H{"data": row})
}

func (s *Server) handleUpdate(c *gin.Context) {
	table := c.Param("table")
	conds := parseConditions(c)

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(400, gin.H{"message": "invalid patch payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]map[string]any, 0)
	for i, row := range s.tables[table] {
		if !matchesAll(row, conds) {
			continue
		}
		old := make(map[string]any, len(row))
		next := make(map[string]any, len(row))
		for k, v := range row {
			old[k] = v
			next[k] = v
		}
		for k, v := range patch {
			next[k] = v
		}
		s.tables[table][i] = next
		s.recordChange(table, "UPDATE", next, old)
		updated = append(updated, next)
	}

	c.JSON(200, gin.H{"data": updated})
}

func (s *Server) handleDelete(c *gin.Context) {
	table := c.Param("table")
	conds := parseConditions(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]map[string]any, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		if matchesAll(row, conds) {
			s.recordChange(table, "DELETE", nil, row)
			continue
		}
		kept = append(kept, row)
	}
	s.tables[table] = kept

	c.JSON(200, gin.H{"data": gin.H{}})
}

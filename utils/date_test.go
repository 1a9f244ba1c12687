package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2026-03-10T08:00:00Z", time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
		{"space separated", "2026-03-10 08:00:00", time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
		{"no zone", "2026-03-10T08:00:00", time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
		{"date only", "2026-03-10", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISOTime(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}

	_, err := ParseISOTime("")
	assert.Error(t, err)
	_, err = ParseISOTime("next tuesday")
	assert.Error(t, err)
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(evening, nextDay))

	// zones normalize to UTC before comparing
	oslo := time.FixedZone("CET", 3600)
	lateOslo := time.Date(2026, 3, 11, 0, 30, 0, 0, oslo) // 23:30 UTC on the 10th
	assert.True(t, SameDay(evening, lateOslo))
}

func TestGroupBy(t *testing.T) {
	type row struct {
		Dept string
		N    int
	}
	rows := []row{{"a", 1}, {"b", 2}, {"a", 3}}

	grouped := GroupBy(rows, func(r row) string { return r.Dept })
	assert.Len(t, grouped["a"], 2)
	assert.Len(t, grouped["b"], 1)
}

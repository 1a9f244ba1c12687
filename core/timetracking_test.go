package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harborview.com/shiftman/model"
)

func TestRoundHours(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want float64
	}{
		{"whole hours", 8 * time.Hour, 8},
		{"half hour", 8*time.Hour + 30*time.Minute, 8.5},
		{"rounds up", 7*time.Hour + 59*time.Minute + 42*time.Second, 8},
		{"rounds to two decimals", 8*time.Hour + 20*time.Minute, 8.33},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundHours(tt.d))
		})
	}
}

func TestClockInClockOut(t *testing.T) {
	client, _ := newOnlineClient(t)
	svc := NewTimeTrackingService(newTestStore(t), client, nil)

	clock := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	entry, err := svc.ClockIn(context.Background(), ClockInInput{
		EmployeeID: "e1",
		Location:   &model.GeoPoint{Latitude: 59.33, Longitude: 18.07},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", entry.Date)
	assert.True(t, entry.Open())

	clock = clock.Add(8*time.Hour + 30*time.Minute)
	closed, err := svc.ClockOut(context.Background(), "e1")
	require.NoError(t, err)
	assert.False(t, closed.Open())
	assert.Equal(t, 8.5, closed.TotalHours)
}

func TestSecondClockInRejected(t *testing.T) {
	client, _ := newOnlineClient(t)
	svc := NewTimeTrackingService(newTestStore(t), client, nil)

	_, err := svc.ClockIn(context.Background(), ClockInInput{EmployeeID: "e1"})
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), ClockInInput{EmployeeID: "e1"})
	assert.ErrorIs(t, err, ErrOpenEntry)

	// another employee clocking in is unaffected
	_, err = svc.ClockIn(context.Background(), ClockInInput{EmployeeID: "e2"})
	assert.NoError(t, err)
}

func TestClockOutWithoutOpenEntry(t *testing.T) {
	client, _ := newOnlineClient(t)
	svc := NewTimeTrackingService(newTestStore(t), client, nil)

	_, err := svc.ClockOut(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrNoOpenEntry)
}

func TestBreakDeductedFromTotal(t *testing.T) {
	client, _ := newOnlineClient(t)
	svc := NewTimeTrackingService(newTestStore(t), client, nil)

	clock := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	_, err := svc.ClockIn(context.Background(), ClockInInput{EmployeeID: "e1"})
	require.NoError(t, err)

	clock = clock.Add(4 * time.Hour)
	_, err = svc.StartBreak(context.Background(), "e1")
	require.NoError(t, err)

	clock = clock.Add(30 * time.Minute)
	_, err = svc.EndBreak(context.Background(), "e1")
	require.NoError(t, err)

	clock = clock.Add(4 * time.Hour)
	closed, err := svc.ClockOut(context.Background(), "e1")
	require.NoError(t, err)

	// 8.5h on the clock minus the 30 minute break
	assert.Equal(t, 8.0, closed.TotalHours)
}

func TestBreakRequiresOpenEntry(t *testing.T) {
	client, _ := newOnlineClient(t)
	svc := NewTimeTrackingService(newTestStore(t), client, nil)

	_, err := svc.StartBreak(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrNoOpenEntry)

	_, err = svc.EndBreak(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrNoOpenEntry)
}

func TestOpenEntry(t *testing.T) {
	out := time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{
		{ID: "closed", EmployeeID: "e1", ClockOut: &out},
		{ID: "open-other", EmployeeID: "e2"},
		{ID: "open-mine", EmployeeID: "e1"},
	}

	open := OpenEntry(entries, "e1")
	require.NotNil(t, open)
	assert.Equal(t, "open-mine", open.ID)

	assert.Nil(t, OpenEntry(entries, "e3"))
}

func TestClockOutOfflineKeepsLocalEntry(t *testing.T) {
	store := newTestStore(t)
	svc := NewTimeTrackingService(store, newOfflineClient(), nil)

	clock := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	entry, err := svc.ClockIn(context.Background(), ClockInInput{EmployeeID: "e1"})
	require.Error(t, err)
	require.NotNil(t, entry)

	clock = clock.Add(2 * time.Hour)
	closed, err := svc.ClockOut(context.Background(), "e1")
	require.Error(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, 2.0, closed.TotalHours)

	// the closed entry is still in the cache for the next reconcile
	assert.Len(t, svc.Load(), 1)
	assert.False(t, svc.Load()[0].Open())
}

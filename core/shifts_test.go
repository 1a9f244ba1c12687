package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
)

func shiftOn(id, employeeID, date, start string) model.Shift {
	return model.Shift{
		ID:         id,
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  start,
		EndTime:    "17:00",
		Status:     model.ShiftScheduled,
	}
}

func TestTodayShifts(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)

	shifts := []model.Shift{
		shiftOn("yesterday", "e1", "2026-03-09", "08:00"),
		shiftOn("today-a", "e1", "2026-03-10", "08:00"),
		shiftOn("today-b", "e2", "2026-03-10", "14:00"),
		shiftOn("tomorrow", "e1", "2026-03-11", "08:00"),
	}

	today := TodayShifts(shifts, now)
	require.Len(t, today, 2)
	assert.Equal(t, "today-a", today[0].ID)
	assert.Equal(t, "today-b", today[1].ID)
}

func TestUpcomingShifts(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)

	shifts := []model.Shift{
		shiftOn("past", "e1", "2026-03-08", "08:00"),
		shiftOn("today", "e1", "2026-03-10", "08:00"),
		shiftOn("later-day", "e1", "2026-03-14", "08:00"),
		shiftOn("next-day-late", "e1", "2026-03-11", "14:00"),
		shiftOn("next-day-early", "e1", "2026-03-11", "07:00"),
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"sorted by date then start", 0, []string{"next-day-early", "next-day-late", "later-day"}},
		{"capped at limit", 2, []string{"next-day-early", "next-day-late"}},
		{"limit above count", 10, []string{"next-day-early", "next-day-late", "later-day"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpcomingShifts(shifts, now, tt.limit)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestAddShiftRejectsInvertedWindow(t *testing.T) {
	svc := NewShiftService(newTestStore(t), newOfflineClient(), nil)

	_, err := svc.AddShift(context.Background(), AddShiftInput{
		EmployeeID: "e1",
		Date:       "2026-03-10",
		StartTime:  "17:00",
		EndTime:    "09:00",
	})
	assert.ErrorIs(t, err, ErrShiftWindow)
	assert.Empty(t, svc.Load())
}

func TestAddShiftValidation(t *testing.T) {
	svc := NewShiftService(newTestStore(t), newOfflineClient(), nil)

	tests := []struct {
		name  string
		input AddShiftInput
	}{
		{"missing employee", AddShiftInput{Date: "2026-03-10", StartTime: "08:00", EndTime: "16:00"}},
		{"bad date", AddShiftInput{EmployeeID: "e1", Date: "10/03/2026", StartTime: "08:00", EndTime: "16:00"}},
		{"bad time", AddShiftInput{EmployeeID: "e1", Date: "2026-03-10", StartTime: "8am", EndTime: "16:00"}},
		{"unknown category", AddShiftInput{EmployeeID: "e1", Date: "2026-03-10", StartTime: "08:00", EndTime: "16:00", Category: "spa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddShift(context.Background(), tt.input)
			assert.Error(t, err)
		})
	}
}

func TestAddShiftOnline(t *testing.T) {
	store := newTestStore(t)
	client, srv := newOnlineClient(t)
	svc := NewShiftService(store, client, nil)

	shift, err := svc.AddShift(context.Background(), AddShiftInput{
		EmployeeID: "e1",
		Date:       "2026-03-10",
		StartTime:  "08:00",
		EndTime:    "16:00",
		Category:   model.CategoryHousekeeping,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ShiftScheduled, shift.Status)
	assert.NotEmpty(t, shift.ID)

	// written through to both sides
	assert.Len(t, svc.Load(), 1)
	assert.Len(t, srv.Rows("shifts"), 1)
}

func TestAddShiftOfflineKeepsLocalCopy(t *testing.T) {
	store := newTestStore(t)
	svc := NewShiftService(store, newOfflineClient(), nil)

	shift, err := svc.AddShift(context.Background(), AddShiftInput{
		EmployeeID: "e1",
		Date:       "2026-03-10",
		StartTime:  "08:00",
		EndTime:    "16:00",
	})
	require.Error(t, err)
	require.NotNil(t, shift)

	// the local copy survives, flagged for the next reconcile
	assert.Len(t, svc.Load(), 1)
	dirty, derr := store.ListDirty(cache.BucketShifts)
	require.NoError(t, derr)
	assert.Contains(t, dirty, shift.ID)
}

func TestRefreshWritesThrough(t *testing.T) {
	store := newTestStore(t)
	client, srv := newOnlineClient(t)
	srv.Seed("shifts",
		map[string]any{"id": "s1", "employeeId": "e1", "date": "2026-03-10", "startTime": "08:00", "endTime": "16:00", "status": "scheduled"},
		map[string]any{"id": "s2", "employeeId": "e2", "date": "2026-03-11", "startTime": "09:00", "endTime": "17:00", "status": "scheduled"},
	)

	svc := NewShiftService(store, client, nil)

	fresh, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Len(t, svc.Load(), 2)

	narrowed, err := svc.RefreshForEmployee(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, "s1", narrowed[0].ID)
}

func TestUpdateStatus(t *testing.T) {
	store := newTestStore(t)
	client, _ := newOnlineClient(t)
	svc := NewShiftService(store, client, nil)

	added, err := svc.AddShift(context.Background(), AddShiftInput{
		EmployeeID: "e1", Date: "2026-03-10", StartTime: "08:00", EndTime: "16:00",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), added.ID, model.ShiftCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftCompleted, updated.Status)

	cached, err := cache.GetJSON[model.Shift](store, cache.BucketShifts, added.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftCompleted, cached.Status)
}

func TestApproveRequestMaterializesShift(t *testing.T) {
	store := newTestStore(t)
	client, _ := newOnlineClient(t)
	svc := NewShiftService(store, client, nil)

	req, err := svc.SubmitRequest(context.Background(), "e1", "2026-03-20", "", "", "prefer early")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)

	shift, err := svc.ApproveRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "e1", shift.EmployeeID)
	assert.Equal(t, "2026-03-20", shift.Date)
	assert.Equal(t, "09:00", shift.StartTime)
	assert.Equal(t, "17:00", shift.EndTime)
	assert.Equal(t, model.ShiftScheduled, shift.Status)

	stored, err := cache.GetJSON[model.ShiftRequest](store, cache.BucketShiftRequests, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)

	// a second approval is rejected
	_, err = svc.ApproveRequest(context.Background(), req.ID)
	assert.ErrorIs(t, err, ErrImmutable)
}

func TestRejectRequest(t *testing.T) {
	store := newTestStore(t)
	client, _ := newOnlineClient(t)
	svc := NewShiftService(store, client, nil)

	req, err := svc.SubmitRequest(context.Background(), "e1", "2026-03-20", "10:00", "18:00", "")
	require.NoError(t, err)

	require.NoError(t, svc.RejectRequest(context.Background(), req.ID))

	stored, err := cache.GetJSON[model.ShiftRequest](store, cache.BucketShiftRequests, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, stored.Status)

	assert.ErrorIs(t, svc.RejectRequest(context.Background(), req.ID), ErrImmutable)
	assert.Empty(t, svc.Load())
}

func TestRemoveShift(t *testing.T) {
	store := newTestStore(t)
	client, srv := newOnlineClient(t)
	svc := NewShiftService(store, client, nil)

	added, err := svc.AddShift(context.Background(), AddShiftInput{
		EmployeeID: "e1", Date: "2026-03-10", StartTime: "08:00", EndTime: "16:00",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveShift(context.Background(), added.ID))
	assert.Empty(t, svc.Load())
	assert.Empty(t, srv.Rows("shifts"))
}

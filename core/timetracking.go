package core

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/realtime"
	"harborview.com/shiftman/utils"
)

type TimeTrackingService struct {
	store    *cache.Store
	api      *v1.Client
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewTimeTrackingService(store *cache.Store, api *v1.Client, log *slog.Logger) *TimeTrackingService {
	if log == nil {
		log = slog.Default()
	}
	return &TimeTrackingService{
		store:    store,
		api:      api,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *TimeTrackingService) Load() []model.TimeEntry {
	return loadCached[model.TimeEntry](s.store, cache.BucketTimeEntries, s.log)
}

func (s *TimeTrackingService) Refresh(ctx context.Context) ([]model.TimeEntry, error) {
	return refreshList(ctx, s.store, s.api, tableTimeEntries, nil,
		func(e model.TimeEntry) string { return e.ID }, s.log)
}

type ClockInInput struct {
	EmployeeID string          `validate:"required"`
	Location   *model.GeoPoint `validate:"omitempty"`
}

// ClockIn opens a new time entry. At most one open entry may exist per
// employee; a second clock-in is rejected before any write happens.
func (s *TimeTrackingService) ClockIn(ctx context.Context, input ClockInInput) (*model.TimeEntry, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	if OpenEntry(s.Load(), input.EmployeeID) != nil {
		return nil, ErrOpenEntry
	}

	now := s.now().UTC()
	entry := model.TimeEntry{
		ID:         uuid.NewString(),
		EmployeeID: input.EmployeeID,
		Date:       now.Format("2006-01-02"),
		ClockIn:    now,
		Location:   input.Location,
	}

	err := putOptimistic(ctx, s.store, s.api, tableTimeEntries, entry.ID, entry, s.log)
	return &entry, err
}

// ClockOut closes the employee's open entry and computes TotalHours, net of
// any recorded break, rounded to two decimals.
func (s *TimeTrackingService) ClockOut(ctx context.Context, employeeID string) (*model.TimeEntry, error) {
	entry := OpenEntry(s.Load(), employeeID)
	if entry == nil {
		return nil, ErrNoOpenEntry
	}

	now := s.now().UTC()
	entry.ClockOut = &now
	entry.TotalHours = RoundHours(worked(*entry))

	err := putOptimistic(ctx, s.store, s.api, tableTimeEntries, entry.ID, *entry, s.log)
	return entry, err
}

// StartBreak records the break start on the open entry.
func (s *TimeTrackingService) StartBreak(ctx context.Context, employeeID string) (*model.TimeEntry, error) {
	entry := OpenEntry(s.Load(), employeeID)
	if entry == nil {
		return nil, ErrNoOpenEntry
	}
	now := s.now().UTC()
	entry.BreakStart = &now
	err := putOptimistic(ctx, s.store, s.api, tableTimeEntries, entry.ID, *entry, s.log)
	return entry, err
}

// EndBreak records the break end on the open entry.
func (s *TimeTrackingService) EndBreak(ctx context.Context, employeeID string) (*model.TimeEntry, error) {
	entry := OpenEntry(s.Load(), employeeID)
	if entry == nil {
		return nil, ErrNoOpenEntry
	}
	now := s.now().UTC()
	entry.BreakEnd = &now
	err := putOptimistic(ctx, s.store, s.api, tableTimeEntries, entry.ID, *entry, s.log)
	return entry, err
}

// Watch reloads time entries on backend row changes.
func (s *TimeTrackingService) Watch(reg *realtime.Registry, filter string, onReload func([]model.TimeEntry, error)) (*realtime.Subscription, error) {
	return reg.Subscribe(tableTimeEntries, filter, realtime.EventAll, realtime.Handlers{
		OnChange: func(realtime.Event) {
			items, err := s.Refresh(context.Background())
			onReload(items, err)
		},
	})
}

// OpenEntry finds the employee's entry with no clock-out, if any.
func OpenEntry(entries []model.TimeEntry, employeeID string) *model.TimeEntry {
	return utils.Find(entries, func(e model.TimeEntry) bool {
		return e.EmployeeID == employeeID && e.Open()
	})
}

// worked is the session span minus a completed break window.
func worked(e model.TimeEntry) time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	d := e.ClockOut.Sub(e.ClockIn)
	if e.BreakStart != nil && e.BreakEnd != nil && e.BreakEnd.After(*e.BreakStart) {
		d -= e.BreakEnd.Sub(*e.BreakStart)
	}
	return d
}

// RoundHours converts a duration to hours rounded to two decimals.
func RoundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

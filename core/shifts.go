package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/realtime"
	"harborview.com/shiftman/utils"
)

type ShiftService struct {
	store    *cache.Store
	api      *v1.Client
	log      *slog.Logger
	validate *validator.Validate
}

func NewShiftService(store *cache.Store, api *v1.Client, log *slog.Logger) *ShiftService {
	if log == nil {
		log = slog.Default()
	}
	return &ShiftService{
		store:    store,
		api:      api,
		log:      log,
		validate: validator.New(),
	}
}

// Load returns the cached shifts for immediate display.
func (s *ShiftService) Load() []model.Shift {
	return loadCached[model.Shift](s.store, cache.BucketShifts, s.log)
}

// Refresh fetches from the backend and writes through to the cache.
func (s *ShiftService) Refresh(ctx context.Context) ([]model.Shift, error) {
	return refreshList(ctx, s.store, s.api, tableShifts, nil,
		func(sh model.Shift) string { return sh.ID }, s.log)
}

// RefreshForEmployee narrows the fetch to one employee's shifts.
func (s *ShiftService) RefreshForEmployee(ctx context.Context, employeeID string) ([]model.Shift, error) {
	q := v1.NewQuery().Eq("employeeId", employeeID)
	return refreshList(ctx, s.store, s.api, tableShifts, q,
		func(sh model.Shift) string { return sh.ID }, s.log)
}

type AddShiftInput struct {
	EmployeeID string         `validate:"required"`
	Date       string         `validate:"required,datetime=2006-01-02"`
	StartTime  string         `validate:"required,datetime=15:04"`
	EndTime    string         `validate:"required,datetime=15:04"`
	Department string         `validate:"omitempty,max=64"`
	Category   model.Category `validate:"omitempty,oneof=breakfast housekeeping frontdesk"`
	Position   string         `validate:"omitempty,max=64"`
	Notes      string         `validate:"omitempty,max=500"`
}

// AddShift validates, applies the shift locally, then pushes it to the
// backend. The returned shift is usable even when the remote write failed.
func (s *ShiftService) AddShift(ctx context.Context, input AddShiftInput) (*model.Shift, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid shift: %w", err)
	}
	if input.StartTime >= input.EndTime {
		return nil, ErrShiftWindow
	}

	shift := model.Shift{
		ID:         uuid.NewString(),
		EmployeeID: input.EmployeeID,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Department: input.Department,
		Category:   input.Category,
		Position:   input.Position,
		Status:     model.ShiftScheduled,
		Notes:      input.Notes,
	}

	err := putOptimistic(ctx, s.store, s.api, tableShifts, shift.ID, shift, s.log)
	return &shift, err
}

// UpdateStatus transitions a shift and persists the change.
func (s *ShiftService) UpdateStatus(ctx context.Context, shiftID string, status model.ShiftStatus) (*model.Shift, error) {
	shift, err := cache.GetJSON[model.Shift](s.store, cache.BucketShifts, shiftID)
	if err != nil || shift == nil {
		return nil, fmt.Errorf("shift %s not found", shiftID)
	}
	shift.Status = status
	err = putOptimistic(ctx, s.store, s.api, tableShifts, shift.ID, *shift, s.log)
	return shift, err
}

// RemoveShift deletes locally and remotely.
func (s *ShiftService) RemoveShift(ctx context.Context, shiftID string) error {
	return deleteOptimistic(ctx, s.store, s.api, tableShifts, shiftID, s.log)
}

// SubmitRequest files an employee's candidate date for admin disposition.
func (s *ShiftService) SubmitRequest(ctx context.Context, employeeID, date, startTime, endTime, note string) (*model.ShiftRequest, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid request date %q: %w", date, err)
	}

	req := model.ShiftRequest{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
		Status:     model.RequestPending,
		Note:       note,
	}
	err := putOptimistic(ctx, s.store, s.api, tableShiftRequests, req.ID, req, s.log)
	return &req, err
}

// ApproveRequest materializes a scheduled shift from a pending request and
// marks the request approved.
func (s *ShiftService) ApproveRequest(ctx context.Context, requestID string) (*model.Shift, error) {
	req, err := cache.GetJSON[model.ShiftRequest](s.store, cache.BucketShiftRequests, requestID)
	if err != nil || req == nil {
		return nil, fmt.Errorf("shift request %s not found", requestID)
	}
	if req.Status != model.RequestPending {
		return nil, ErrImmutable
	}

	req.Status = model.RequestApproved
	if err := putOptimistic(ctx, s.store, s.api, tableShiftRequests, req.ID, *req, s.log); err != nil {
		return nil, err
	}

	startTime := req.StartTime
	endTime := req.EndTime
	if startTime == "" {
		startTime = "09:00"
	}
	if endTime == "" {
		endTime = "17:00"
	}

	return s.AddShift(ctx, AddShiftInput{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		StartTime:  startTime,
		EndTime:    endTime,
	})
}

// RejectRequest marks a pending request rejected.
func (s *ShiftService) RejectRequest(ctx context.Context, requestID string) error {
	req, err := cache.GetJSON[model.ShiftRequest](s.store, cache.BucketShiftRequests, requestID)
	if err != nil || req == nil {
		return fmt.Errorf("shift request %s not found", requestID)
	}
	if req.Status != model.RequestPending {
		return ErrImmutable
	}
	req.Status = model.RequestRejected
	return putOptimistic(ctx, s.store, s.api, tableShiftRequests, req.ID, *req, s.log)
}

// LoadRequests returns cached shift requests.
func (s *ShiftService) LoadRequests() []model.ShiftRequest {
	return loadCached[model.ShiftRequest](s.store, cache.BucketShiftRequests, s.log)
}

// RefreshRequests fetches shift requests from the backend.
func (s *ShiftService) RefreshRequests(ctx context.Context) ([]model.ShiftRequest, error) {
	return refreshList(ctx, s.store, s.api, tableShiftRequests, nil,
		func(r model.ShiftRequest) string { return r.ID }, s.log)
}

// Watch reloads shifts whenever the backend reports a row change on the
// shifts table, delivering the fresh list to onReload.
func (s *ShiftService) Watch(reg *realtime.Registry, filter string, onReload func([]model.Shift, error)) (*realtime.Subscription, error) {
	return reg.Subscribe(tableShifts, filter, realtime.EventAll, realtime.Handlers{
		OnChange: func(realtime.Event) {
			items, err := s.Refresh(context.Background())
			onReload(items, err)
		},
	})
}

// TodayShifts returns the shifts dated on now's calendar day.
func TodayShifts(shifts []model.Shift, now time.Time) []model.Shift {
	today := now.UTC().Format("2006-01-02")
	return utils.Filter(shifts, func(sh model.Shift) bool { return sh.Date == today })
}

// UpcomingShifts returns up to limit strictly-future shifts sorted
// ascending by date. limit <= 0 means no cap.
func UpcomingShifts(shifts []model.Shift, now time.Time, limit int) []model.Shift {
	today := now.UTC().Format("2006-01-02")
	upcoming := utils.Filter(shifts, func(sh model.Shift) bool { return sh.Date > today })

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].Date != upcoming[j].Date {
			return upcoming[i].Date < upcoming[j].Date
		}
		return upcoming[i].StartTime < upcoming[j].StartTime
	})

	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

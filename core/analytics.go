package core

import (
	"fmt"
	"io"
	"log/slog"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/reports"
)

// AnalyticsService materializes the derived reports. Everything it produces
// is recomputable from the cached shifts, time entries and leave requests;
// the reports bucket is a display cache, never a source of truth.
type AnalyticsService struct {
	store *cache.Store
	api   *v1.Client
	log   *slog.Logger
}

func NewAnalyticsService(store *cache.Store, api *v1.Client, log *slog.Logger) *AnalyticsService {
	if log == nil {
		log = slog.Default()
	}
	return &AnalyticsService{store: store, api: api, log: log}
}

// MonthlyReport recomputes one employee's report for a month from cached
// rows and caches the result.
func (s *AnalyticsService) MonthlyReport(employeeID string, year, month int) (*model.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	shifts := loadCached[model.Shift](s.store, cache.BucketShifts, s.log)
	entries := loadCached[model.TimeEntry](s.store, cache.BucketTimeEntries, s.log)
	leaves := loadCached[model.LeaveRequest](s.store, cache.BucketLeaveRequests, s.log)

	report := reports.BuildMonthly(employeeID, year, month, shifts, entries, leaves)

	if err := cache.PutJSON(s.store, cache.BucketReports, report.Key(), report); err != nil {
		s.log.Warn("failed to cache monthly report", "employee", employeeID, "error", err)
	}
	return &report, nil
}

// CachedReports returns all cached monthly reports.
func (s *AnalyticsService) CachedReports() []model.MonthlyReport {
	return loadCached[model.MonthlyReport](s.store, cache.BucketReports, s.log)
}

// TaskSummary summarizes the cached task list.
func (s *AnalyticsService) TaskSummary() reports.TaskSummary {
	return reports.SummarizeTasks(loadCached[model.Task](s.store, cache.BucketTasks, s.log))
}

// LeaveSummary summarizes the cached leave requests.
func (s *AnalyticsService) LeaveSummary() reports.LeaveSummary {
	return reports.SummarizeLeave(loadCached[model.LeaveRequest](s.store, cache.BucketLeaveRequests, s.log))
}

// Export writes the admin analytics workbook from cached data.
func (s *AnalyticsService) Export(w io.Writer) error {
	monthly := s.CachedReports()
	tasks := loadCached[model.Task](s.store, cache.BucketTasks, s.log)
	leaves := loadCached[model.LeaveRequest](s.store, cache.BucketLeaveRequests, s.log)
	return reports.WriteWorkbook(w, monthly, tasks, leaves)
}

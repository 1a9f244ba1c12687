// Package reports folds raw rows into the derived summaries the admin
// screens display. Everything here is a deterministic reduction over
// already-loaded slices; nothing talks to the cache or the backend.
package reports

import (
	"strconv"
	"strings"
	"time"

	"harborview.com/shiftman/model"
)

const (
	nightStartHour = 18 // shifts starting at or after 18:00 count as night
	nightEndHour   = 6  // ... as do shifts starting before 06:00
)

// IsNightShift classifies by start hour: [18:00, 24:00) and [00:00, 06:00).
func IsNightShift(s model.Shift) bool {
	hour := startHour(s)
	return hour >= nightStartHour || hour < nightEndHour
}

// IsWeekendShift reports whether the shift date falls on Saturday or Sunday.
func IsWeekendShift(s model.Shift) bool {
	d, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

func startHour(s model.Shift) int {
	parts := strings.SplitN(s.StartTime, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return hour
}

func inMonth(dateStr string, year, month int) bool {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return false
	}
	return d.Year() == year && int(d.Month()) == month
}

// overlapsMonth reports whether [startDate, endDate] intersects the month.
func overlapsMonth(startDate, endDate string, year, month int) bool {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return false
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return false
	}
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)
	return !start.After(monthEnd) && !end.Before(monthStart)
}

// BuildMonthly computes an employee's report for one month from their
// shifts, time entries and leave requests. Rows outside the month or
// belonging to other employees are ignored, so callers can pass unfiltered
// lists straight from the cache.
func BuildMonthly(employeeID string, year, month int, shifts []model.Shift, entries []model.TimeEntry, leaves []model.LeaveRequest) model.MonthlyReport {
	report := model.MonthlyReport{
		EmployeeID:  employeeID,
		Year:        year,
		Month:       month,
		GeneratedAt: time.Now(),
	}

	entryDates := make(map[string]bool)
	for _, e := range entries {
		if e.EmployeeID != employeeID || !inMonth(e.Date, year, month) {
			continue
		}
		report.TotalHours += e.TotalHours
		entryDates[e.Date] = true
	}

	for _, s := range shifts {
		if s.EmployeeID != employeeID || !inMonth(s.Date, year, month) {
			continue
		}
		switch s.Status {
		case model.ShiftCompleted:
			report.ShiftsCompleted++
			if IsNightShift(s) {
				report.NightShifts++
			} else {
				report.DayShifts++
			}
			if IsWeekendShift(s) {
				report.WeekendShifts++
			}
		case model.ShiftScheduled:
			// a scheduled shift with no clock activity on its date is an absence
			if !entryDates[s.Date] {
				report.Absences++
			}
		}
	}

	for _, l := range leaves {
		if l.EmployeeID != employeeID || l.Status != model.RequestApproved {
			continue
		}
		if overlapsMonth(l.StartDate, l.EndDate, year, month) {
			report.ApprovedLeaves++
		}
	}

	return report
}

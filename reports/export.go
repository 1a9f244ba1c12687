package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"harborview.com/shiftman/model"
)

// WriteWorkbook renders monthly reports plus task and leave summaries into
// a spreadsheet for the admin analytics export.
func WriteWorkbook(w io.Writer, monthly []model.MonthlyReport, tasks []model.Task, leaves []model.LeaveRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Monthly Reports"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Employee", "Year", "Month", "Total Hours", "Shifts Completed", "Day Shifts", "Night Shifts", "Weekend Shifts", "Absences", "Approved Leaves"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, r := range monthly {
		values := []any{r.EmployeeID, r.Year, r.Month, r.TotalHours, r.ShiftsCompleted, r.DayShifts, r.NightShifts, r.WeekendShifts, r.Absences, r.ApprovedLeaves}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	taskSheet := "Tasks"
	if _, err := f.NewSheet(taskSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	taskSummary := SummarizeTasks(tasks)
	f.SetCellValue(taskSheet, "A1", "Total")
	f.SetCellValue(taskSheet, "B1", taskSummary.Total)
	row := 3
	f.SetCellValue(taskSheet, "A2", "By Status")
	for _, status := range []model.TaskStatus{model.TaskPending, model.TaskInProgress, model.TaskCompleted, model.TaskCancelled} {
		f.SetCellValue(taskSheet, fmt.Sprintf("A%d", row), string(status))
		f.SetCellValue(taskSheet, fmt.Sprintf("B%d", row), taskSummary.ByStatus[status])
		row++
	}
	f.SetCellValue(taskSheet, fmt.Sprintf("A%d", row), "By Priority")
	row++
	for _, priority := range []model.TaskPriority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh} {
		f.SetCellValue(taskSheet, fmt.Sprintf("A%d", row), string(priority))
		f.SetCellValue(taskSheet, fmt.Sprintf("B%d", row), taskSummary.ByPriority[priority])
		row++
	}

	leaveSheet := "Leave"
	if _, err := f.NewSheet(leaveSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	leaveSummary := SummarizeLeave(leaves)
	f.SetCellValue(leaveSheet, "A1", "Total")
	f.SetCellValue(leaveSheet, "B1", leaveSummary.Total)
	row = 2
	for _, status := range []model.RequestStatus{model.RequestPending, model.RequestApproved, model.RequestRejected} {
		f.SetCellValue(leaveSheet, fmt.Sprintf("A%d", row), string(status))
		f.SetCellValue(leaveSheet, fmt.Sprintf("B%d", row), leaveSummary.ByStatus[status])
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

package reports

import (
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/utils"
)

type TaskSummary struct {
	Total      int                        `json:"total"`
	ByStatus   map[model.TaskStatus]int   `json:"byStatus"`
	ByPriority map[model.TaskPriority]int `json:"byPriority"`
}

func SummarizeTasks(tasks []model.Task) TaskSummary {
	summary := TaskSummary{
		Total:      len(tasks),
		ByStatus:   make(map[model.TaskStatus]int),
		ByPriority: make(map[model.TaskPriority]int),
	}
	for _, t := range tasks {
		summary.ByStatus[t.Status]++
		summary.ByPriority[t.Priority]++
	}
	return summary
}

type LeaveSummary struct {
	Total    int                         `json:"total"`
	ByStatus map[model.RequestStatus]int `json:"byStatus"`
	ByType   map[model.LeaveType]int     `json:"byType"`
}

func SummarizeLeave(requests []model.LeaveRequest) LeaveSummary {
	summary := LeaveSummary{
		Total:    len(requests),
		ByStatus: make(map[model.RequestStatus]int),
		ByType:   make(map[model.LeaveType]int),
	}
	for _, l := range requests {
		summary.ByStatus[l.Status]++
		summary.ByType[l.Type]++
	}
	return summary
}

// ShiftMix groups shifts per department for the staffing overview.
func ShiftMix(shifts []model.Shift) map[string]int {
	grouped := utils.GroupBy(shifts, func(s model.Shift) string { return s.Department })
	mix := make(map[string]int, len(grouped))
	for dept, items := range grouped {
		mix[dept] = len(items)
	}
	return mix
}

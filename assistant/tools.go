package assistant

import (
	"encoding/json"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/core"
	"harborview.com/shiftman/model"
)

type scheduleInput struct {
	Days int `json:"days" jsonschema_description:"How many upcoming days of schedule to include"`
}

type emptyInput struct{}

// defineTools registers the cache-backed tools the direct-model path can
// call. They read only this employee's rows.
func defineTools(g *genkit.Genkit, store *cache.Store, employeeID string) []ai.ToolRef {
	schedule := genkit.DefineTool(g, "schedule", "Get the employee's shifts for today and upcoming days",
		func(ctx *ai.ToolContext, input scheduleInput) (string, error) {
			shifts, err := cache.ListJSON[model.Shift](store, cache.BucketShifts)
			if err != nil {
				return "", err
			}
			mine := make([]model.Shift, 0)
			for _, s := range shifts {
				if s.EmployeeID == employeeID {
					mine = append(mine, s)
				}
			}

			limit := input.Days
			if limit <= 0 {
				limit = 7
			}
			now := time.Now()
			result := append(core.TodayShifts(mine, now), core.UpcomingShifts(mine, now, limit)...)
			return marshalJSON(result)
		},
	)

	clock := genkit.DefineTool(g, "clockStatus", "Get the employee's current clock-in status",
		func(ctx *ai.ToolContext, input emptyInput) (string, error) {
			entries, err := cache.ListJSON[model.TimeEntry](store, cache.BucketTimeEntries)
			if err != nil {
				return "", err
			}
			open := core.OpenEntry(entries, employeeID)
			if open == nil {
				return `{"clockedIn": false}`, nil
			}
			return marshalJSON(open)
		},
	)

	leave := genkit.DefineTool(g, "leaveRequests", "Get the employee's leave requests and their statuses",
		func(ctx *ai.ToolContext, input emptyInput) (string, error) {
			requests, err := cache.ListJSON[model.LeaveRequest](store, cache.BucketLeaveRequests)
			if err != nil {
				return "", err
			}
			mine := make([]model.LeaveRequest, 0)
			for _, l := range requests {
				if l.EmployeeID == employeeID {
					mine = append(mine, l)
				}
			}
			return marshalJSON(mine)
		},
	)

	return []ai.ToolRef{schedule, clock, leave}
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"harborview.com/shiftman/backend/mock"
)

// newSeededServer builds a mock backend with a week of data for two
// employees across housekeeping and the front desk.
func newSeededServer(secret string) (*mock.Server, error) {
	srv, err := mock.New(secret)
	if err != nil {
		return nil, err
	}

	managerID := srv.AddUser("manager@harborview.test", "manager123", "manager")
	staffID := srv.AddUser("staff@harborview.test", "staff123", "staff")

	srv.Seed("employees",
		map[string]any{
			"id": managerID, "firstName": "Alma", "lastName": "Reyes",
			"email": "manager@harborview.test", "role": "manager", "category": "frontdesk",
		},
		map[string]any{
			"id": staffID, "firstName": "Jonas", "lastName": "Berg",
			"email": "staff@harborview.test", "role": "employee", "category": "housekeeping",
		},
	)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for day := 0; day < 7; day++ {
		date := today.AddDate(0, 0, day).Format("2006-01-02")
		srv.Seed("shifts",
			map[string]any{
				"id": uuid.NewString(), "employeeId": staffID, "date": date,
				"startTime": "08:00", "endTime": "16:00",
				"department": "Housekeeping", "category": "housekeeping",
				"position": "Room Attendant", "status": "scheduled",
			},
			map[string]any{
				"id": uuid.NewString(), "employeeId": managerID, "date": date,
				"startTime": "14:00", "endTime": "22:00",
				"department": "Front Office", "category": "frontdesk",
				"position": "Duty Manager", "status": "scheduled",
			},
		)
	}

	srv.Seed("tasks",
		map[string]any{
			"id": uuid.NewString(), "title": "Restock floor 3 trolley",
			"assigneeId": staffID, "createdBy": managerID,
			"priority": "high", "status": "pending",
			"dueDate": today.AddDate(0, 0, 1).Format("2006-01-02"),
		},
		map[string]any{
			"id": uuid.NewString(), "title": "Deep clean suite 401",
			"assigneeId": staffID, "createdBy": managerID,
			"priority": "medium", "status": "pending",
			"dueDate": today.AddDate(0, 0, 2).Format("2006-01-02"),
		},
	)

	srv.Seed("leave_requests",
		map[string]any{
			"id": uuid.NewString(), "employeeId": staffID,
			"type": "vacation", "status": "pending",
			"startDate": today.AddDate(0, 0, 14).Format("2006-01-02"),
			"endDate":   today.AddDate(0, 0, 18).Format("2006-01-02"),
			"reason":    "family trip",
		},
	)

	fmt.Printf("seeded %d employees, %d shifts, %d tasks\n",
		len(srv.Rows("employees")), len(srv.Rows("shifts")), len(srv.Rows("tasks")))
	return srv, nil
}

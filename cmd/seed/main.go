// Seeds the local cache with demo data so the app is usable fully offline,
// without the mock backend running.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
)

func main() {
	path := flag.String("cache", "shiftman.db", "cache database path")
	flag.Parse()

	store, err := cache.Open(*path, nil)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	defer store.Close()

	staff := model.Employee{
		ID:        "demo-staff",
		FirstName: "Jonas",
		LastName:  "Berg",
		Email:     "staff@harborview.test",
		Role:      model.RoleEmployee,
		Category:  model.CategoryHousekeeping,
	}
	if err := cache.PutJSON(store, cache.BucketEmployees, staff.ID, staff); err != nil {
		log.Fatalf("failed to seed employee: %v", err)
	}

	today := time.Now().UTC()
	count := 0
	for day := 0; day < 7; day++ {
		shift := model.Shift{
			ID:         uuid.NewString(),
			EmployeeID: staff.ID,
			Date:       today.AddDate(0, 0, day).Format("2006-01-02"),
			StartTime:  "08:00",
			EndTime:    "16:00",
			Department: "Housekeeping",
			Category:   staff.Category,
			Position:   "Room Attendant",
			Status:     model.ShiftScheduled,
		}
		if err := cache.PutJSON(store, cache.BucketShifts, shift.ID, shift); err != nil {
			log.Fatalf("failed to seed shift: %v", err)
		}
		count++
	}

	leave := model.LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: staff.ID,
		Type:       model.LeaveVacation,
		Status:     model.RequestPending,
		StartDate:  today.AddDate(0, 0, 14).Format("2006-01-02"),
		EndDate:    today.AddDate(0, 0, 18).Format("2006-01-02"),
		Reason:     "family trip",
	}
	if err := cache.PutJSON(store, cache.BucketLeaveRequests, leave.ID, leave); err != nil {
		log.Fatalf("failed to seed leave request: %v", err)
	}

	fmt.Printf("seeded 1 employee and %d shifts into %s\n", count, *path)
}

package model

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

type Category string

const (
	CategoryBreakfast    Category = "breakfast"
	CategoryHousekeeping Category = "housekeeping"
	CategoryFrontdesk    Category = "frontdesk"
)

type Employee struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	Phone             string   `json:"phone,omitempty"`
	Role              Role     `json:"role"`
	Category          Category `json:"category,omitempty"`
	NotificationPrefs []string `json:"notificationPrefs,omitempty"`
	CreatedAt         string   `json:"createdAt,omitempty"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "scheduled"
	ShiftInProgress ShiftStatus = "in-progress"
	ShiftCompleted  ShiftStatus = "completed"
	ShiftCancelled  ShiftStatus = "cancelled"
	ShiftRequested  ShiftStatus = "requested"
	ShiftApproved   ShiftStatus = "approved"
	ShiftRejected   ShiftStatus = "rejected"
)

// Shift assigns one employee to a time window on a date.
// Date is yyyy-MM-dd, StartTime/EndTime are HH:mm within that date.
type Shift struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employeeId"`
	Date       string      `json:"date"`
	StartTime  string      `json:"startTime"`
	EndTime    string      `json:"endTime"`
	Department string      `json:"department,omitempty"`
	Category   Category    `json:"category,omitempty"`
	Position   string      `json:"position,omitempty"`
	Status     ShiftStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ShiftRequest is an employee-submitted candidate date awaiting admin
// disposition. Approval materializes a Shift.
type ShiftRequest struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	Date       string        `json:"date"`
	StartTime  string        `json:"startTime,omitempty"`
	EndTime    string        `json:"endTime,omitempty"`
	Status     RequestStatus `json:"status"`
	Note       string        `json:"note,omitempty"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TimeEntry is one clock session. ClockOut stays nil while the session is
// open; at most one open entry exists per employee.
type TimeEntry struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	ClockIn    time.Time  `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
	BreakStart *time.Time `json:"breakStart,omitempty"`
	BreakEnd   *time.Time `json:"breakEnd,omitempty"`
	Location   *GeoPoint  `json:"location,omitempty"`
	TotalHours float64    `json:"totalHours"`
}

func (t TimeEntry) Open() bool {
	return t.ClockOut == nil
}

type LeaveType string

const (
	LeaveVacation LeaveType = "vacation"
	LeaveSick     LeaveType = "sick"
	LeavePersonal LeaveType = "personal"
	LeaveUnpaid   LeaveType = "unpaid"
)

type LeaveRequest struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	StartDate  string        `json:"startDate"`
	EndDate    string        `json:"endDate"`
	Type       LeaveType     `json:"type"`
	Status     RequestStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	ReviewedBy *string       `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time    `json:"reviewedAt,omitempty"`
}

// Reviewed reports whether the request has been approved or rejected.
// Reviewed requests are immutable except for the audit fields.
func (l LeaveRequest) Reviewed() bool {
	return l.Status == RequestApproved || l.Status == RequestRejected
}

type DocumentKind string

const (
	DocumentGeneric     DocumentKind = "document"
	DocumentSickLeave   DocumentKind = "sick_leave_certificate"
	DocumentWorkPermit  DocumentKind = "work_permit"
	DocumentPayslipCopy DocumentKind = "payslip_copy"
)

// Document is uploaded-file metadata; the blob itself lives in object
// storage under StoragePath.
type Document struct {
	ID          string        `json:"id"`
	EmployeeID  string        `json:"employeeId"`
	Kind        DocumentKind  `json:"kind"`
	FileName    string        `json:"fileName"`
	ContentType string        `json:"contentType,omitempty"`
	StoragePath string        `json:"storagePath"`
	Status      RequestStatus `json:"status"`
	UploadedAt  time.Time     `json:"uploadedAt"`
	ReviewedBy  *string       `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewedAt,omitempty"`
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

type Task struct {
	ID          string       `json:"id"`
	AssigneeID  string       `json:"assigneeId"`
	CreatedBy   string       `json:"createdBy,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     string       `json:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MonthlyReport is a derived aggregate, recomputable from shifts, time
// entries and leave requests. Cached for display, never a source of truth.
type MonthlyReport struct {
	EmployeeID      string    `json:"employeeId"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	TotalHours      float64   `json:"totalHours"`
	ShiftsCompleted int       `json:"shiftsCompleted"`
	DayShifts       int       `json:"dayShifts"`
	NightShifts     int       `json:"nightShifts"`
	WeekendShifts   int       `json:"weekendShifts"`
	Absences        int       `json:"absences"`
	ApprovedLeaves  int       `json:"approvedLeaves"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

func (r MonthlyReport) Key() string {
	return r.EmployeeID + "|" + monthKey(r.Year, r.Month)
}

func monthKey(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

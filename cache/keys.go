package cache

// Buckets, one per entity list.
const (
	BucketEmployees     = "employees"
	BucketShifts        = "shifts"
	BucketShiftRequests = "shift_requests"
	BucketTimeEntries   = "time_entries"
	BucketLeaveRequests = "leave_requests"
	BucketTasks         = "tasks"
	BucketNotifications = "notifications"
	BucketDocuments     = "documents"
	BucketReports       = "reports"
)

// Scalar settings.
const (
	SettingAuthenticated = "authenticated"
	SettingSession       = "session"
	SettingPushToken     = "push_token"
)

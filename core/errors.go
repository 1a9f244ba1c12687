package core

import "errors"

var (
	// ErrOpenEntry rejects a clock-in while another session is still open.
	ErrOpenEntry = errors.New("an open time entry already exists")

	// ErrNoOpenEntry rejects a clock-out without a matching clock-in.
	ErrNoOpenEntry = errors.New("no open time entry to clock out")

	// ErrImmutable rejects edits to a leave request or document that has
	// already been approved or rejected.
	ErrImmutable = errors.New("record has been reviewed and is immutable")

	// ErrShiftWindow rejects a shift whose start is not before its end.
	ErrShiftWindow = errors.New("shift start time must be before end time")

	ErrNotAuthenticated = errors.New("not authenticated")
)

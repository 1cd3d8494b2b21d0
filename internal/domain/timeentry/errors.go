package timeentry

import "github.com/rpggio/billable/internal/apperr"

var (
	// ErrTimeEntryNotFound indicates the time entry doesn't exist.
	ErrTimeEntryNotFound = apperr.New(apperr.ErrNotFound, "time entry not found")
	// ErrTimerRunning indicates another timer is already running.
	ErrTimerRunning = apperr.New(apperr.ErrConflict, "a timer is already running")
	// ErrNotRunning indicates the timer was already stopped.
	ErrNotRunning = apperr.New(apperr.ErrState, "time entry is not running")
	// ErrEntryLocked indicates the entry belongs to a paid invoice.
	ErrEntryLocked = apperr.New(apperr.ErrState, "time entry is on a paid invoice")
)

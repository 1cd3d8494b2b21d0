package invoice

import "time"

// ListOptions filters invoice listings. Overdue and Unpaid compare against Today.
type ListOptions struct {
	ClientID string
	Status   Status
	Overdue  bool
	Unpaid   bool
	Today    time.Time
	Limit    int
	Offset   int
}

package timeentry

// ListOptions filters time entry listings. Zero values match everything.
type ListOptions struct {
	ClientID  string
	ProjectID string
	Status    Status
	Billing   Billing
	Limit     int
	Offset    int
}

package client

import "github.com/rpggio/billable/internal/apperr"

var (
	// ErrClientNotFound indicates the client doesn't exist.
	ErrClientNotFound = apperr.New(apperr.ErrNotFound, "client not found")
)

package profile

import "github.com/rpggio/billable/internal/apperr"

// ErrProfileNotFound indicates no profile has been saved yet.
var ErrProfileNotFound = apperr.New(apperr.ErrNotFound, "profile not found")

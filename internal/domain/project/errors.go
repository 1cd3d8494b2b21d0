package project

import "github.com/rpggio/billable/internal/apperr"

// ErrProjectNotFound indicates the project doesn't exist.
var ErrProjectNotFound = apperr.New(apperr.ErrNotFound, "project not found")

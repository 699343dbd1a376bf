/*
Package game
File: errors.go
Description:
    The failure categories every game operation reports.
*/

package game

import "errors"

// Failure categories. Operations wrap one of these with detail, callers
// branch on them with errors.Is.
var (
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrPreconditionNotMet    = errors.New("precondition not met")
	ErrUnknownEntity         = errors.New("unknown entity")
	ErrPersistence           = errors.New("persistence failure")
)

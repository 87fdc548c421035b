package domain

import "errors"

var (
	// ErrIssueNotFound is returned when no issue id could be extracted from a
	// row or the tracker does not know the id.
	ErrIssueNotFound = errors.New("issue not found")
	// ErrProjectNotFound is returned when the tracker has no project for a short name.
	ErrProjectNotFound = errors.New("project not found")
)

package models

import "fmt"

// ValidationError reports a missing or malformed task field. The store is left
// unchanged when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports an update or lookup of a task id that does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %d", e.ID)
}

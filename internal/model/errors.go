package model

import "fmt"

// ProvisionError reports that a model instance could not be created. It is
// fatal to the current attempt only; the attempt is treated as a rejection.
type ProvisionError struct {
	Name string
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s: %v", e.Name, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// QueryError reports a query that failed after exhausting retries. Handled
// the same way as ProvisionError.
type QueryError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DisposeError reports a cleanup failure. Disposal is best-effort; callers
// log these and never propagate them.
type DisposeError struct {
	Name string
	Err  error
}

func (e *DisposeError) Error() string {
	return fmt.Sprintf("dispose %s: %v", e.Name, e.Err)
}

func (e *DisposeError) Unwrap() error { return e.Err }

package migrate

import "fmt"

// ConfigurationError reports an invalid step sequence (duplicate,
// non-positive or out-of-order identifiers, missing bodies). It is raised
// before any store contact.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

// ConcurrentRunError reports that another migration run holds the advisory
// lock. The caller should retry later; nothing was applied.
type ConcurrentRunError struct {
	Err error
}

func (e *ConcurrentRunError) Error() string {
	return fmt.Sprintf("another migration run appears to be in progress: %v", e.Err)
}

func (e *ConcurrentRunError) Unwrap() error { return e.Err }

// StoreError reports a step whose statements failed against the store. The
// step's transaction was rolled back and no later steps were attempted.
type StoreError struct {
	StepID int
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("migration step %03d failed: %v", e.StepID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

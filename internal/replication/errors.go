package replication

import (
	"errors"
	"fmt"
)

// ErrIncompleteConfig aborts a batch before any document is touched.
var ErrIncompleteConfig = errors.New("remote server settings must be fully configured (URL, DB, Username, Password)")

// MappingError reports that a required natural-key lookup found no remote
// match. It is fatal to the current document only; the orchestrator marks
// the document failed and continues the batch.
type MappingError struct {
	Model     string
	Field     string
	Value     string
	CompanyID int64
}

func (e *MappingError) Error() string {
	if e.CompanyID != 0 {
		return fmt.Sprintf("no %s found with %s %q in remote company %d", e.Model, e.Field, e.Value, e.CompanyID)
	}
	return fmt.Sprintf("no %s found with %s %q in the remote database", e.Model, e.Field, e.Value)
}

// AuthError reports that the remote rejected the configured credentials.
// Fatal to the whole batch.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("remote authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

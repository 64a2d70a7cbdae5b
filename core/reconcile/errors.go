package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable indicates that a catalog API call failed.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidOption indicates malformed or contradictory export options.
	ErrInvalidOption = errors.New("invalid option")

	// ErrDatabaseNotFound indicates that the catalog has no database with the given name.
	ErrDatabaseNotFound = errors.New("database not found")
)

// CatalogUnavailableError is returned when a call to the catalog API fails.
// It carries enough context to retry the call externally.
type CatalogUnavailableError struct {
	// Key is the qualified key of the entity, or the database reference.
	Key string
	// Operation is the attempted client operation, e.g. "update_field".
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *CatalogUnavailableError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("catalog unavailable during %s of %s: %v", e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("catalog unavailable during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *CatalogUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *CatalogUnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// unavailable wraps a client error with the entity and operation it failed on.
func unavailable(key, operation string, err error) error {
	var existing *CatalogUnavailableError
	if errors.As(err, &existing) {
		return err
	}
	return &CatalogUnavailableError{Key: key, Operation: operation, Err: err}
}

// ExportError is the failure of one run of ExportAll.
type ExportError struct {
	// Index is the position of the run's options in the ExportAll call.
	Index    int
	Database string
	Err      error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Database, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// ExportErrors returns the per-run failures contained in an ExportAll error.
func ExportErrors(err error) []*ExportError {
	var out []*ExportError
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			out = append(out, ExportErrors(e)...)
		}
		return out
	}
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		out = append(out, exportErr)
	}
	return out
}

// OptionError is returned by option validation before any network call is made.
type OptionError struct {
	Option  string
	Message string
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Message)
}

// Is implements errors.Is support.
func (e *OptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// IsCatalogUnavailable reports whether err is or wraps a catalog API failure.
func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}

// IsInvalidOption reports whether err is an option validation failure.
func IsInvalidOption(err error) bool {
	return errors.Is(err, ErrInvalidOption)
}

// WarningKind classifies non-fatal findings of an export run.
type WarningKind string

const (
	// WarningStaleCatalog means the sync wait timed out; the run used the current listing.
	WarningStaleCatalog WarningKind = "stale_catalog"
	// WarningUnmatchedEntity means a model or column has no catalog counterpart.
	WarningUnmatchedEntity WarningKind = "unmatched_entity"
	// WarningKeyCollision means two catalog tables, two catalog fields or two manifest
	// models normalize to the same key.
	WarningKeyCollision WarningKind = "key_collision"
)

// Warning is a non-fatal condition reported in the run summary.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Key     string      `json:"key"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Key, w.Message)
}

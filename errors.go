package directory

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for directory operation failures. They provide a stable
// surface for errors.Is classification across all operations.
var (
	// ErrEntryNotFound is returned by get, modify, delete, move and compare
	// when no entry exists at the given DN.
	ErrEntryNotFound = errors.New("directory: entry not found")
	// ErrDuplicateEntry is returned by AddEntry when the DN is already taken.
	ErrDuplicateEntry = errors.New("directory: entry already exists")
	// ErrParentNotFound is returned by AddEntry and MoveEntry when the
	// referenced parent DN does not exist.
	ErrParentNotFound = errors.New("directory: parent entry not found")
	// ErrNotLeaf is returned by DeleteEntry when the entry still has
	// children.
	ErrNotLeaf = errors.New("directory: entry has children")
	// ErrTargetCollision is returned by MoveEntry when another entry already
	// occupies the destination DN.
	ErrTargetCollision = errors.New("directory: target DN already exists")
	// ErrHierarchyViolation is returned by MoveEntry when the destination
	// parent is the entry itself or one of its descendants.
	ErrHierarchyViolation = errors.New("directory: move would create a cycle")
	// ErrInvalidDN is returned when a DN is empty or syntactically invalid.
	ErrInvalidDN = errors.New("directory: invalid distinguished name")
	// ErrInvalidFilter is returned by the filter parser on malformed input.
	ErrInvalidFilter = errors.New("directory: invalid filter")
	// ErrSchemaNotFound is returned by GetSchema for an unknown schema id.
	ErrSchemaNotFound = errors.New("directory: schema not found")
	// ErrVirtualConfigNotFound is returned by GetVirtualDirectoryConfig for
	// an unknown config id.
	ErrVirtualConfigNotFound = errors.New("directory: virtual directory config not found")
)

// DirectoryError carries operation context alongside the underlying failure.
// It wraps one of the sentinel errors so callers can classify with errors.Is
// while still seeing which operation and DN were involved.
type DirectoryError struct {
	// Op is the operation name (e.g. "AddEntry", "MoveEntry").
	Op string
	// DN is the distinguished name involved, if any.
	DN string
	// Err is the underlying error.
	Err error
	// Context holds additional debugging detail.
	Context map[string]any
	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// Error implements the error interface.
func (e *DirectoryError) Error() string {
	if e.DN != "" {
		return fmt.Sprintf("directory %s failed for DN %q: %v", e.Op, e.DN, e.Err)
	}
	return fmt.Sprintf("directory %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// WithContext attaches a key/value pair of debugging detail.
func (e *DirectoryError) WithContext(key string, value any) *DirectoryError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// operationError builds a DirectoryError for op on dn wrapping err.
func operationError(op, dn string, err error) *DirectoryError {
	return &DirectoryError{
		Op:        op,
		DN:        dn,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// IsNotFoundError reports whether err indicates a missing entry, schema or
// virtual directory config.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrParentNotFound) ||
		errors.Is(err, ErrSchemaNotFound) ||
		errors.Is(err, ErrVirtualConfigNotFound)
}

// IsConflictError reports whether err indicates a naming conflict: a
// duplicate add or a move onto an occupied DN.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateEntry) || errors.Is(err, ErrTargetCollision)
}

// IsHierarchyError reports whether err indicates a violated tree constraint:
// deleting a non-leaf or moving an entry under itself.
func IsHierarchyError(err error) bool {
	return errors.Is(err, ErrNotLeaf) || errors.Is(err, ErrHierarchyViolation)
}

// ExtractDN returns the DN recorded on a DirectoryError, or an empty string.
func ExtractDN(err error) string {
	var dirErr *DirectoryError
	if errors.As(err, &dirErr) {
		return dirErr.DN
	}
	return ""
}

// ExtractOperation returns the operation recorded on a DirectoryError, or an
// empty string.
func ExtractOperation(err error) string {
	var dirErr *DirectoryError
	if errors.As(err, &dirErr) {
		return dirErr.Op
	}
	return ""
}

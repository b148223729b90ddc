package archive

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotArchive        = errors.New("file is not a readable zip archive")
	ErrMissingControlDoc = errors.New("archive is missing a control document")
	ErrMalformedDocument = errors.New("control document is not valid JSON")
	ErrMemberMissing     = errors.New("archive member not found")
	ErrWriterClosed      = errors.New("archive writer is closed")
	ErrDuplicateMember   = errors.New("archive member already written")
)

// FormatError provides detail about a structural problem with an archive
// container. It wraps one of the sentinel errors above.
type FormatError struct {
	Path   string // archive file path
	Member string // offending member, if any
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("archive %s: member %q: %v", e.Path, e.Member, e.Err)
	}
	return fmt.Sprintf("archive %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

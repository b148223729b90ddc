package loading

import "errors"

// Common errors.
var (
	ErrMissingExternal  = errors.New("external item has no backing archive member")
	ErrUnknownItemType  = errors.New("no decode function registered for item type")
	ErrKeyTypeMismatch  = errors.New("key type does not match container kind")
	ErrKeyNotFound      = errors.New("key not found in mapping")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrClosed           = errors.New("archive is closed")
	ErrChecksumMismatch = errors.New("external item checksum mismatch: member may be corrupted")
	ErrRootNotContainer = errors.New("main tree document must be a JSON object or array")
)

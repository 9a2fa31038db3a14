package registry

import "errors"

var (
	// ErrBundleNotFound is returned for operations on a bundle that is not installed
	ErrBundleNotFound = errors.New("bundle not found")
	// ErrInvalidUser rejects negative user ids on installation
	ErrInvalidUser = errors.New("invalid user id")
)

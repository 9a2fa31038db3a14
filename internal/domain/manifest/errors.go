package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrPropertyTypeMismatch    = errors.New("property type mismatch")
	ErrRequiredPropertyMissing = errors.New("required property missing")
	ErrPropertySizeExceeded    = errors.New("property size exceeded")
	ErrMalformedRouteData      = errors.New("malformed route data")
	ErrUnsupportedFormat       = errors.New("unsupported manifest format")
	ErrMalformedDocument       = errors.New("malformed manifest document")
)

// PropertyError reports a conversion failure at a property path such as
// module.abilities[0].name
type PropertyError struct {
	Property string
	Err      error
	Detail   string
}

func (e *PropertyError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Property, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

func propertyError(property string, err error, format string, args ...any) *PropertyError {
	return &PropertyError{Property: property, Err: err, Detail: fmt.Sprintf(format, args...)}
}

package utils

import (
	"fmt"
	"regexp"
)

// Manifest size limits (in bytes)
const (
	MaxManifestSize      = 1 * 1024 * 1024 // 1MB - maximum manifest document size
	MaxNameLength        = 128
	MaxDescriptionLength = 1024
	MaxListLength        = 512
)

var (
	// BundleNamePattern allows reverse-domain bundle names such as com.example.app
	BundleNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z0-9_]+)+$`)
	// ModuleNamePattern allows alphanumeric, hyphens, underscores and dots
	ModuleNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// SizeValidator validates document size limits
type SizeValidator struct {
	maxSize int
}

// NewSizeValidator creates a new validator with the specified max size
func NewSizeValidator(maxSize int) *SizeValidator {
	return &SizeValidator{maxSize: maxSize}
}

// DefaultManifestValidator returns a validator with the default 1MB limit
func DefaultManifestValidator() *SizeValidator {
	return NewSizeValidator(MaxManifestSize)
}

// ValidateSize checks if the data size is within limits
func (v *SizeValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return fmt.Errorf("document size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// Exceeds reports whether value is longer than max bytes
func Exceeds(value string, max int) bool {
	return len(value) > max
}

// ValidBundleName reports whether name is a well-formed bundle name
func ValidBundleName(name string) bool {
	return len(name) <= MaxNameLength && BundleNamePattern.MatchString(name)
}

// ValidModuleName reports whether name is a well-formed module or ability name
func ValidModuleName(name string) bool {
	return len(name) <= MaxNameLength && ModuleNamePattern.MatchString(name)
}

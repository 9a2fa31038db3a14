package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/bundlekit/internal/domain/bundle"
	"github.com/GriffinCanCode/bundlekit/internal/domain/manifest"
	"github.com/GriffinCanCode/bundlekit/internal/domain/registry"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var propErr *manifest.PropertyError
	switch {
	case errors.Is(err, registry.ErrBundleNotFound),
		errors.Is(err, bundle.ErrModuleNotFound),
		errors.Is(err, bundle.ErrAbilityNotFound),
		errors.Is(err, bundle.ErrUserOverlayMissing):
		return http.StatusNotFound
	case errors.Is(err, bundle.ErrDuplicateModule),
		errors.Is(err, bundle.ErrDuplicateAbility):
		return http.StatusConflict
	case errors.As(err, &propErr),
		errors.Is(err, manifest.ErrMalformedDocument),
		errors.Is(err, manifest.ErrUnsupportedFormat),
		errors.Is(err, bundle.ErrInvalidModule),
		errors.Is(err, registry.ErrInvalidUser):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the error body and attaches err to the context for logging
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	body := gin.H{"error": err.Error()}
	var propErr *manifest.PropertyError
	if errors.As(err, &propErr) {
		body["property"] = propErr.Property
	}
	c.JSON(statusFor(err), body)
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/domain/manifest"
	"github.com/GriffinCanCode/bundlekit/internal/domain/registry"
	"github.com/GriffinCanCode/bundlekit/internal/domain/skill"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/bundlekit/internal/shared/utils"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	manager *registry.Manager
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(manager *registry.Manager, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		manager: manager,
		metrics: metrics,
		logger:  logger,
	}
}

// Register mounts every route on the router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/bundles", h.ListBundles)
	router.POST("/bundles", h.InstallManifest)

	b := router.Group("/bundles/:bundle")
	b.GET("", h.GetBundle)
	b.GET("/application", h.GetApplication)
	b.GET("/routes", h.GetRouterMap)
	b.GET("/modules/:module", h.GetModule)
	b.DELETE("/modules/:module", h.RemoveModule)
	b.GET("/modules/:module/abilities/:ability", h.GetAbility)

	u := b.Group("/users/:user")
	u.PUT("", h.AddUser)
	u.DELETE("", h.RemoveUser)
	u.POST("/reset", h.ResetUser)
	u.PUT("/enabled", h.SetEnabled)
	u.GET("/abilities/:module/:ability/enabled", h.IsAbilityEnabled)
	u.PUT("/abilities/:module/:ability/enabled", h.SetAbilityEnabled)
	u.PUT("/modules/:module/removable", h.SetModuleRemovable)

	router.GET("/intents", h.FindByIntent)
	router.GET("/intents/data", h.FindByData)
}

// Health returns health status
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"bundles": h.manager.Count(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListBundles lists installed bundle names
func (h *Handlers) ListBundles(c *gin.Context) {
	names := h.manager.Bundles()
	c.JSON(http.StatusOK, gin.H{
		"bundles": names,
		"count":   len(names),
	})
}

// InstallManifest parses the request body as a module manifest and installs it
func (h *Handlers) InstallManifest(c *gin.Context) {
	format, err := requestFormat(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	// One byte over the limit lets the parser report the size error
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, utils.MaxManifestSize+1))
	if err != nil {
		badRequest(c, err)
		return
	}

	rec, err := h.manager.InstallManifest(c.Request.Context(), data, format)
	if err != nil {
		respondError(c, err)
		return
	}

	warnings := make([]string, 0, len(rec.Warnings))
	for _, w := range rec.Warnings {
		warnings = append(warnings, w.Error())
	}
	c.JSON(http.StatusCreated, gin.H{
		"bundle":    rec.Bundle(),
		"module":    rec.Module.Name,
		"abilities": len(rec.Abilities),
		"warnings":  warnings,
	})
}

// requestFormat picks the manifest format from the query or the content type
func requestFormat(c *gin.Context) (manifest.Format, error) {
	if f := c.Query("format"); f != "" {
		return manifest.ParseFormat(f)
	}
	switch ct := c.ContentType(); {
	case strings.Contains(ct, "yaml"):
		return manifest.FormatYAML, nil
	case strings.Contains(ct, "toml"):
		return manifest.FormatTOML, nil
	}
	return manifest.FormatJSON, nil
}

// GetBundle returns the package view of a bundle
func (h *Handlers) GetBundle(c *gin.Context) {
	flags, user, err := projectionParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.manager.Project(c.Param("bundle"), flags, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetApplication returns the application view of a bundle
func (h *Handlers) GetApplication(c *gin.Context) {
	flags, user, err := projectionParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.manager.ProjectApplication(c.Param("bundle"), flags, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetModule returns the view of one module
func (h *Handlers) GetModule(c *gin.Context) {
	flags, user, err := projectionParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.manager.ProjectModule(c.Param("bundle"), c.Param("module"), flags, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetAbility returns the view of one ability or extension
func (h *Handlers) GetAbility(c *gin.Context) {
	flags, user, err := projectionParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.manager.ProjectAbility(c.Param("bundle"), abilityKey(c), flags, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveModule uninstalls one module of a bundle
func (h *Handlers) RemoveModule(c *gin.Context) {
	name, module := c.Param("bundle"), c.Param("module")
	if err := h.manager.RemoveModule(c.Request.Context(), name, module); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bundle":  name,
		"module":  module,
	})
}

// GetRouterMap returns the merged route table of a bundle
func (h *Handlers) GetRouterMap(c *gin.Context) {
	routes, err := h.manager.RouterMap(c.Param("bundle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// FindByIntent resolves an intent against every installed bundle
func (h *Handlers) FindByIntent(c *gin.Context) {
	user, err := queryUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	want := skill.Want{
		Action:   c.Query("action"),
		Entities: c.QueryArray("entity"),
		URI:      c.Query("uri"),
		Type:     c.Query("type"),
	}
	abilities := h.manager.FindByIntent(want, user)
	c.JSON(http.StatusOK, gin.H{
		"abilities": abilities,
		"count":     len(abilities),
	})
}

// FindByData resolves a data URI and MIME type against every installed bundle
func (h *Handlers) FindByData(c *gin.Context) {
	user, err := queryUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	uri := c.Query("uri")
	if uri == "" {
		badRequest(c, errors.New("uri is required"))
		return
	}
	abilities := h.manager.FindAbilitiesByData(uri, c.Query("type"), user)
	c.JSON(http.StatusOK, gin.H{
		"abilities": abilities,
		"count":     len(abilities),
	})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// AddUserRequest is the optional body of PUT /bundles/:bundle/users/:user.
// Enabled defaults to true.
type AddUserRequest struct {
	Enabled       *bool   `json:"enabled"`
	UID           int32   `json:"uid"`
	GIDs          []int32 `json:"gids"`
	AccessTokenID string  `json:"access_token_id"`
}

// EnabledRequest toggles a bundle or ability for a user
type EnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// RemovableRequest marks a module removable for a user
type RemovableRequest struct {
	Removable *bool `json:"removable" binding:"required"`
}

// AddUser installs a bundle for a user
func (h *Handlers) AddUser(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req AddUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	overlay := types.UserOverlay{
		User:          user,
		Enabled:       req.Enabled == nil || *req.Enabled,
		UID:           req.UID,
		GIDs:          req.GIDs,
		AccessTokenID: req.AccessTokenID,
	}
	added, err := h.manager.AddUser(c.Request.Context(), c.Param("bundle"), overlay)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"added":  added,
		"bundle": c.Param("bundle"),
		"user":   user,
	})
}

// RemoveUser uninstalls a bundle for a user
func (h *Handlers) RemoveUser(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.manager.RemoveUser(c.Request.Context(), c.Param("bundle"), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetUser restores a user's overlay to its installed defaults
func (h *Handlers) ResetUser(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.manager.ResetUser(c.Request.Context(), c.Param("bundle"), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetEnabled enables or disables a bundle for a user
func (h *Handlers) SetEnabled(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req EnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.manager.SetEnabled(c.Request.Context(), c.Param("bundle"), user, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

// IsAbilityEnabled reports whether an ability is enabled for a user
func (h *Handlers) IsAbilityEnabled(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	enabled, err := h.manager.IsAbilityEnabled(c.Param("bundle"), abilityKey(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

// SetAbilityEnabled enables or disables one ability for a user
func (h *Handlers) SetAbilityEnabled(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req EnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	key := abilityKey(c)
	if err := h.manager.SetAbilityEnabled(c.Request.Context(), c.Param("bundle"), key, user, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Debug("Ability toggled",
		zap.String("bundle", c.Param("bundle")),
		zap.Stringer("ability", key),
		zap.Stringer("user", user),
		zap.Bool("enabled", *req.Enabled),
	)
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

// SetModuleRemovable records whether a user may remove a module
func (h *Handlers) SetModuleRemovable(c *gin.Context) {
	user, err := pathUser(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req RemovableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.manager.SetModuleRemovable(c.Request.Context(), c.Param("bundle"), c.Param("module"), user, *req.Removable); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removable": *req.Removable})
}

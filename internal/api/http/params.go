package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/bundlekit/internal/domain/projection"
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// queryUser reads the optional user query parameter
func queryUser(c *gin.Context) (types.UserID, error) {
	raw, ok := c.GetQuery("user")
	if !ok || raw == "" {
		return types.NoUser, nil
	}
	user, err := types.ParseUserID(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid user %q", raw)
	}
	return user, nil
}

// pathUser reads the :user path parameter
func pathUser(c *gin.Context) (types.UserID, error) {
	raw := c.Param("user")
	user, err := types.ParseUserID(raw)
	if err != nil || user < 0 {
		return 0, fmt.Errorf("invalid user %q", raw)
	}
	return user, nil
}

// projectionParams reads the flags and user query parameters
func projectionParams(c *gin.Context) (projection.Flag, types.UserID, error) {
	flags, err := projection.ParseFlags(c.Query("flags"))
	if err != nil {
		return 0, 0, err
	}
	user, err := queryUser(c)
	if err != nil {
		return 0, 0, err
	}
	return flags, user, nil
}

func abilityKey(c *gin.Context) types.AbilityKey {
	return types.AbilityKey{Module: c.Param("module"), Name: c.Param("ability")}
}

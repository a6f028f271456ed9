package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/internal/middleware"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetCaller returns the anonymous caller when the request carried no token.
func GetCaller(ctx *gin.Context) permissions.Caller {
	user, err := GetCurrentUser(ctx)
	if err != nil {
		return permissions.Anonymous
	}
	return user.Caller()
}

// ParamID reads a positive integer path parameter.
func ParamID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// QueryID reads an optional positive integer query parameter. present is false
// when the parameter is absent or empty.
func QueryID(ctx *gin.Context, name string) (id uint, present bool, err error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s: %w", name, err)
	}
	return uint(v), true, nil
}

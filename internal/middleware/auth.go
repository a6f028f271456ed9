package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/auth"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/types"
	"gorm.io/gorm"
)

type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

func (u AuthenticatedUser) Caller() permissions.Caller {
	return permissions.Caller{ID: u.ID, IsStaff: u.IsStaff, Authenticated: true}
}

// Authenticate resolves a bearer token to a user. Requests without an
// Authorization header continue anonymously; a header that does not resolve
// to a live user is rejected outright. Browsers cannot set headers on
// websocket upgrades, so those may pass the token as ?token= instead.
func Authenticate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			authHeader = websocketToken(ctx)
		}

		if authHeader == "" {
			ctx.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			unauthorized(ctx, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := auth.VerifyAccess(strings.TrimSpace(parts[1]))

		if err != nil {
			unauthorized(ctx, "Given token not valid for any token type")
			return
		}

		var user models.User

		if err := db.DB.WithContext(ctx.Request.Context()).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unauthorized(ctx, "User not found")
				return
			}
			slog.Error("failed to load authenticated user", slog.Any("error", err))
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsStaff:  user.IsStaff,
		})
		ctx.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if d := permissions.CheckAuthenticated(caller(ctx)); !d.Allowed() {
			Deny(ctx, d)
			return
		}
		ctx.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if d := permissions.CheckStaff(caller(ctx)); !d.Allowed() {
			Deny(ctx, d)
			return
		}
		ctx.Next()
	}
}

// RequireUserScope guards routes nested under a user id path parameter.
func RequireUserScope(param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c := caller(ctx)
		if d := permissions.CheckAuthenticated(c); !d.Allowed() {
			Deny(ctx, d)
			return
		}

		userID, err := strconv.ParseUint(ctx.Param(param), 10, 64)
		if err != nil {
			Deny(ctx, permissions.NotFound)
			return
		}

		if d := permissions.CheckUserScope(c, uint(userID)); !d.Allowed() {
			Deny(ctx, d)
			return
		}
		ctx.Next()
	}
}

// RequireProjectAccess lets any authenticated caller read and only staff write.
func RequireProjectAccess() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		isWrite := !types.SafeMethods[ctx.Request.Method]
		if d := permissions.CheckProject(caller(ctx), isWrite); !d.Allowed() {
			Deny(ctx, d)
			return
		}
		ctx.Next()
	}
}

// Deny aborts the request with the status and message of a denial.
func Deny(ctx *gin.Context, d permissions.Decision) {
	if d == permissions.Unauthenticated {
		unauthorized(ctx, d.Message())
		return
	}
	ctx.AbortWithStatusJSON(d.Status(), gin.H{"error": d.Message()})
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.Header("WWW-Authenticate", `Bearer realm="api"`)
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

func caller(ctx *gin.Context) permissions.Caller {
	if user, ok := ctx.Get(types.ContextUserKey); ok {
		if u, ok := user.(AuthenticatedUser); ok {
			return u.Caller()
		}
	}
	return permissions.Anonymous
}

func websocketToken(ctx *gin.Context) string {
	if !strings.EqualFold(ctx.GetHeader("Upgrade"), "websocket") {
		return ""
	}
	if token := ctx.Query("token"); token != "" {
		return "Bearer " + token
	}
	return ""
}

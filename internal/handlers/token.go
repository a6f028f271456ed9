package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/auth"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/types"
	"gorm.io/gorm"
)

type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

const msgBadCredentials = "No active account found with the given credentials"

// ObtainToken exchanges username and password for an access/refresh pair.
func ObtainToken(ctx *gin.Context) {
	var body TokenRequest

	if !bindJSON(ctx, &body) {
		return
	}

	var user models.User

	err := db.DB.WithContext(ctx.Request.Context()).Where("username = ?", body.Username).First(&user).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(ctx, "failed to fetch user", err)
		return
	}

	if err != nil || !auth.CheckPassword(user.PasswordHash, body.Password) {
		ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: msgBadCredentials})
		return
	}

	pair, err := auth.IssuePair(&user)

	if err != nil {
		internalError(ctx, "failed to issue tokens", err)
		return
	}

	slog.Info("token issued", slog.Uint64("user_id", uint64(user.ID)))
	ctx.JSON(http.StatusOK, pair)
}

func RefreshToken(ctx *gin.Context) {
	var body RefreshRequest

	if !bindJSON(ctx, &body) {
		return
	}

	access, err := auth.Refresh(ctx.Request.Context(), body.Refresh)

	if err != nil {
		tokenFailed(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access": access})
}

// BlacklistToken revokes a refresh token so it can no longer be exchanged.
func BlacklistToken(ctx *gin.Context) {
	var body RefreshRequest

	if !bindJSON(ctx, &body) {
		return
	}

	claims, err := auth.VerifyRefresh(ctx.Request.Context(), body.Refresh)

	if err != nil {
		tokenFailed(ctx, err)
		return
	}

	if err := auth.Revoke(ctx.Request.Context(), claims); err != nil {
		internalError(ctx, "failed to revoke token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

func tokenFailed(ctx *gin.Context, err error) {
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
		ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Token is invalid or expired"})
		return
	}
	internalError(ctx, "failed to verify refresh token", err)
}

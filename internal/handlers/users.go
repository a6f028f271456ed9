package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/auth"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/serializers"
	"github.com/monocle-dev/timetrack/internal/types"
	"github.com/monocle-dev/timetrack/internal/utils"
	"gorm.io/gorm/clause"
)

const resourceUser = "user"

// ListUsers is staff only; the router enforces that.
func ListUsers(ctx *gin.Context) {
	query := db.DB.WithContext(ctx.Request.Context()).Model(&models.User{})

	page, ok := paginate(ctx, query, serializers.UserRead)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// RegisterUser is open to anonymous callers and answers with a token pair.
func RegisterUser(ctx *gin.Context) {
	var body serializers.RegisterInput

	if !bindJSON(ctx, &body) {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	fields, err := serializers.ValidateRegistration(tx, body)

	if err != nil {
		writeError(ctx, "failed to validate registration", err)
		return
	}

	passwordHash, err := auth.HashPassword(fields.Password)

	if err != nil {
		internalError(ctx, "failed to hash password", err)
		return
	}

	user := models.User{
		Username:     fields.Username,
		Email:        fields.Email,
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
		PasswordHash: passwordHash,
		DateJoined:   time.Now().UTC(),
	}

	if err := tx.Create(&user).Error; err != nil {
		saveFailed(ctx, "failed to create user", err, serializers.UserConflict())
		return
	}

	tokens, err := auth.IssuePair(&user)

	if err != nil {
		internalError(ctx, "failed to issue tokens", err)
		return
	}

	recordWrite(ctx, "create", resourceUser, user.ID)

	ctx.JSON(http.StatusCreated, types.RegisterResponse{
		UserResponse: serializers.UserRead(&user),
		Tokens:       tokens,
	})
}

func Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		deny(ctx, permissions.Unauthenticated)
		return
	}

	var user models.User

	if err := db.DB.WithContext(ctx.Request.Context()).First(&user, userID).Error; err != nil {
		loadFailed(ctx, resourceUser, err)
		return
	}

	ctx.JSON(http.StatusOK, serializers.UserRead(&user))
}

// loadUser fetches the user addressed by the path and checks the caller may
// act on it. Missing users are 404; other users' accounts are 403.
func loadUser(ctx *gin.Context) (models.User, bool) {
	var user models.User

	userID, ok := utils.ParamID(ctx, "user_id")
	if !ok {
		notFound(ctx)
		return user, false
	}

	if err := db.DB.WithContext(ctx.Request.Context()).First(&user, userID).Error; err != nil {
		loadFailed(ctx, resourceUser, err)
		return user, false
	}

	if !permissions.CanAccess(utils.GetCaller(ctx), user.ID, !types.SafeMethods[ctx.Request.Method]) {
		deny(ctx, permissions.Forbidden)
		return user, false
	}

	return user, true
}

func GetUser(ctx *gin.Context) {
	user, ok := loadUser(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, serializers.UserRead(&user))
}

// UpdateUser serves PUT and PATCH on a user's profile fields.
func UpdateUser(ctx *gin.Context) {
	user, ok := loadUser(ctx)
	if !ok {
		return
	}

	var body serializers.UserUpdateInput

	if !bindJSON(ctx, &body) {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	fields, err := serializers.ValidateUserUpdate(tx, body, isPartial(ctx), user.ID)

	if err != nil {
		writeError(ctx, "failed to validate user update", err)
		return
	}

	fields.Apply(&user, body)

	if err := tx.Omit(clause.Associations).Save(&user).Error; err != nil {
		saveFailed(ctx, "failed to update user", err, serializers.UserConflict())
		return
	}

	recordWrite(ctx, "update", resourceUser, user.ID)

	ctx.JSON(http.StatusOK, serializers.UserRead(&user))
}

// DeleteUser removes the account together with its contracts and their logs.
func DeleteUser(ctx *gin.Context) {
	user, ok := loadUser(ctx)
	if !ok {
		return
	}

	if err := db.DB.WithContext(ctx.Request.Context()).Delete(&user).Error; err != nil {
		internalError(ctx, "failed to delete user", err)
		return
	}

	recordWrite(ctx, "delete", resourceUser, user.ID)

	ctx.Status(http.StatusNoContent)
}

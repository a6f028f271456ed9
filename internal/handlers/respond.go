package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/monocle-dev/timetrack/internal/middleware"
	"github.com/monocle-dev/timetrack/internal/observability/metrics"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/serializers"
	"github.com/monocle-dev/timetrack/internal/types"
	"github.com/monocle-dev/timetrack/internal/utils"
	"gorm.io/gorm"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(serializers.JSONFieldName)
	}
}

// bindJSON decodes the body into dst and answers the request itself when that fails.
func bindJSON(ctx *gin.Context, dst interface{}) bool {
	err := ctx.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		validationFailed(ctx, serializers.FromValidator(verrs))
		return false
	}

	message := "Invalid request"
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		message = "Request body is required"
	case errors.As(err, &syntaxErr):
		message = "JSON parse error"
	case errors.As(err, &typeErr):
		message = "Invalid type for field " + typeErr.Field
	}

	slog.Debug("failed to bind JSON", slog.Any("error", err))
	ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: message})
	return false
}

func validationFailed(ctx *gin.Context, errs serializers.FieldErrors) {
	ctx.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
		Error:  "Validation failed",
		Fields: errs,
	})
}

// writeError answers with 422 for field errors and 500 for anything else.
func writeError(ctx *gin.Context, message string, err error) {
	var errs serializers.FieldErrors
	if errors.As(err, &errs) {
		validationFailed(ctx, errs)
		return
	}
	internalError(ctx, message, err)
}

func internalError(ctx *gin.Context, message string, err error) {
	slog.Error(message,
		slog.Any("error", err),
		slog.String("request_id", ctx.GetString(middleware.RequestIDKey)))
	ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal server error"})
}

func notFound(ctx *gin.Context) {
	ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: permissions.NotFound.Message()})
}

func badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: message})
}

// deny renders a permission decision that was not Allowed.
func deny(ctx *gin.Context, d permissions.Decision) {
	ctx.JSON(d.Status(), types.ErrorResponse{Error: d.Message()})
}

// loadFailed maps a lookup error to 404 or 500.
func loadFailed(ctx *gin.Context, resource string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(ctx)
		return
	}
	internalError(ctx, "failed to load "+resource, err)
}

// saveFailed answers a failed insert or update. A unique index violation that
// slipped past validation gets the same 422 the validator would have produced.
func saveFailed(ctx *gin.Context, message string, err error, conflict serializers.FieldErrors) {
	if isUniqueViolation(err) {
		validationFailed(ctx, conflict)
		return
	}
	internalError(ctx, message, err)
}

// isUniqueViolation recognises unique index failures from every supported driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isPartial reports whether the request is a PATCH.
func isPartial(ctx *gin.Context) bool {
	return ctx.Request.Method == http.MethodPatch
}

// recordWrite emits the audit log line and write metric for a change.
func recordWrite(ctx *gin.Context, action, resource string, id uint) {
	metrics.ObserveWrite(resource, action)

	actor, _ := utils.GetCurrentUserID(ctx)
	slog.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.Uint64("resource_id", uint64(id)),
		slog.Uint64("actor_id", uint64(actor)),
		slog.String("request_id", ctx.GetString(middleware.RequestIDKey)))
}

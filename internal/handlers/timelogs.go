package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/feed"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/observability/metrics"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/serializers"
	"github.com/monocle-dev/timetrack/internal/types"
	"github.com/monocle-dev/timetrack/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const resourceTimelog = "timelog"

const timelogPreload = "Contract.Project"

// ListTimelogs returns every log to staff and the caller's own otherwise.
// Filters: contract, date.
func ListTimelogs(ctx *gin.Context) {
	query := db.DB.WithContext(ctx.Request.Context()).
		Model(&models.Timelog{}).
		Scopes(permissions.TimelogsVisibleTo(utils.GetCaller(ctx)))

	query, ok := filterByID(ctx, query, "contract", "timelogs.contract_id")
	if !ok {
		return
	}
	listTimelogs(ctx, query)
}

// ListUserTimelogs lists logs under the contracts of the user in the path.
func ListUserTimelogs(ctx *gin.Context) {
	userID, _ := utils.ParamID(ctx, "user_id")

	query := db.DB.WithContext(ctx.Request.Context()).
		Model(&models.Timelog{}).
		Scopes(permissions.TimelogsOwnedBy(userID))

	query, ok := filterByID(ctx, query, "contract", "timelogs.contract_id")
	if !ok {
		return
	}
	listTimelogs(ctx, query)
}

// ListContractTimelogs lists the logs of one contract the caller can see.
func ListContractTimelogs(ctx *gin.Context) {
	contract, ok := loadContract(ctx, "contract_id")
	if !ok {
		return
	}

	query := db.DB.WithContext(ctx.Request.Context()).
		Model(&models.Timelog{}).
		Where("timelogs.contract_id = ?", contract.ID)

	listTimelogs(ctx, query)
}

func listTimelogs(ctx *gin.Context, query *gorm.DB) {
	if raw := ctx.Query("date"); raw != "" {
		date, err := time.Parse(types.DateLayout, raw)
		if err != nil {
			badRequest(ctx, "Enter a valid date.")
			return
		}
		query = query.Where("timelogs.date = ?", datatypes.Date(date))
	}

	page, ok := paginate(ctx, query, serializers.TimelogRead, timelogPreload)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// CreateUserTimelog records a log under one of the path user's contracts.
// The contract must also be one the caller is allowed to reference.
func CreateUserTimelog(ctx *gin.Context) {
	userID, _ := utils.ParamID(ctx, "user_id")

	var body serializers.TimelogInput

	if !bindJSON(ctx, &body) {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())
	schema := serializers.Select(ctx.Request.Method, utils.GetCaller(ctx))

	allowed := func(q *gorm.DB) *gorm.DB {
		return permissions.ContractsOwnedBy(userID)(schema.AllowedContracts()(q))
	}

	fields, err := schema.ValidateTimelog(tx, body, false, nil, allowed)

	if err != nil {
		writeError(ctx, "failed to validate timelog", err)
		return
	}

	var timelog models.Timelog
	fields.Apply(&timelog)

	if err := tx.Create(&timelog).Error; err != nil {
		saveFailed(ctx, "failed to create timelog", err, serializers.TimelogConflict())
		return
	}

	hours, _ := timelog.HoursWorked.Float64()
	metrics.AddHoursLogged(hours)

	timelogChanged(ctx, "create", feed.TimelogCreated, &timelog)
}

// loadTimelog fetches the log in the path with its contract and project.
// Logs under other users' contracts are reported as missing.
func loadTimelog(ctx *gin.Context) (models.Timelog, bool) {
	var timelog models.Timelog

	timelogID, ok := utils.ParamID(ctx, "timelog_id")
	if !ok {
		notFound(ctx)
		return timelog, false
	}

	tx := db.DB.WithContext(ctx.Request.Context())

	if err := tx.Preload(timelogPreload).First(&timelog, timelogID).Error; err != nil {
		loadFailed(ctx, resourceTimelog, err)
		return timelog, false
	}

	owner, err := permissions.TimelogOwner(tx, &timelog)
	if err != nil {
		internalError(ctx, "failed to resolve timelog owner", err)
		return timelog, false
	}

	isWrite := !types.SafeMethods[ctx.Request.Method]
	if d := permissions.CheckObject(utils.GetCaller(ctx), owner, isWrite); !d.Allowed() {
		deny(ctx, d)
		return timelog, false
	}

	return timelog, true
}

func GetTimelog(ctx *gin.Context) {
	timelog, ok := loadTimelog(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, serializers.TimelogRead(&timelog))
}

// UpdateTimelog serves PUT and PATCH.
func UpdateTimelog(ctx *gin.Context) {
	timelog, ok := loadTimelog(ctx)
	if !ok {
		return
	}

	var body serializers.TimelogInput

	if !bindJSON(ctx, &body) {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())
	schema := serializers.Select(ctx.Request.Method, utils.GetCaller(ctx))

	fields, err := schema.ValidateTimelog(tx, body, isPartial(ctx), &timelog, schema.AllowedContracts())

	if err != nil {
		writeError(ctx, "failed to validate timelog", err)
		return
	}

	fields.Apply(&timelog)

	if err := tx.Omit(clause.Associations).Save(&timelog).Error; err != nil {
		saveFailed(ctx, "failed to update timelog", err, serializers.TimelogConflict())
		return
	}

	timelogChanged(ctx, "update", feed.TimelogUpdated, &timelog)
}

func DeleteTimelog(ctx *gin.Context) {
	timelog, ok := loadTimelog(ctx)
	if !ok {
		return
	}

	if err := db.DB.WithContext(ctx.Request.Context()).Delete(&timelog).Error; err != nil {
		internalError(ctx, "failed to delete timelog", err)
		return
	}

	recordWrite(ctx, "delete", resourceTimelog, timelog.ID)
	Activity.Publish(feed.Event{Type: feed.TimelogDeleted, ID: timelog.ID, OwnerID: timelog.OwnerID()})

	ctx.Status(http.StatusNoContent)
}

func timelogChanged(ctx *gin.Context, action, event string, timelog *models.Timelog) {
	if err := db.DB.WithContext(ctx.Request.Context()).Preload(timelogPreload).First(timelog, timelog.ID).Error; err != nil {
		internalError(ctx, "failed to reload timelog", err)
		return
	}

	recordWrite(ctx, action, resourceTimelog, timelog.ID)
	Activity.Publish(feed.Event{Type: event, ID: timelog.ID, OwnerID: timelog.OwnerID()})

	status := http.StatusOK
	if action == "create" {
		status = http.StatusCreated
	}
	ctx.JSON(status, serializers.TimelogRead(timelog))
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/feed"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/serializers"
	"github.com/monocle-dev/timetrack/internal/types"
	"github.com/monocle-dev/timetrack/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const resourceContract = "contract"

// ListContracts returns every contract to staff and the caller's own otherwise.
// Filters: user, project.
func ListContracts(ctx *gin.Context) {
	query := db.DB.WithContext(ctx.Request.Context()).
		Model(&models.Contract{}).
		Scopes(permissions.ContractsVisibleTo(utils.GetCaller(ctx)))

	query, ok := filterByID(ctx, query, "user", "contracts.user_id")
	if !ok {
		return
	}
	listContracts(ctx, query)
}

// ListUserContracts lists the contracts of the user in the path. Filter: project.
func ListUserContracts(ctx *gin.Context) {
	userID, _ := utils.ParamID(ctx, "user_id")

	query := db.DB.WithContext(ctx.Request.Context()).
		Model(&models.Contract{}).
		Scopes(permissions.ContractsOwnedBy(userID))

	listContracts(ctx, query)
}

func listContracts(ctx *gin.Context, query *gorm.DB) {
	query, ok := filterByID(ctx, query, "project", "contracts.project_id")
	if !ok {
		return
	}

	page, ok := paginate(ctx, query, serializers.ContractRead, "Project")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// CreateUserContract creates a contract for the user in the path; any user
// given in the body is replaced by it.
func CreateUserContract(ctx *gin.Context) {
	userID, _ := utils.ParamID(ctx, "user_id")

	var body serializers.ContractInput

	if !bindJSON(ctx, &body) {
		return
	}

	body.User = &serializers.Value{Text: strconv.FormatUint(uint64(userID), 10), Kind: "int"}

	tx := db.DB.WithContext(ctx.Request.Context())
	schema := serializers.Select(ctx.Request.Method, utils.GetCaller(ctx))

	fields, err := schema.ValidateContract(tx, body, false, nil)

	if err != nil {
		writeError(ctx, "failed to validate contract", err)
		return
	}

	var contract models.Contract
	fields.Apply(&contract)

	if err := tx.Create(&contract).Error; err != nil {
		saveFailed(ctx, "failed to create contract", err, serializers.ContractConflict())
		return
	}

	contractChanged(ctx, "create", feed.ContractCreated, &contract)
}

// loadContract fetches the contract in the path. Contracts the caller may
// not see are reported as missing.
func loadContract(ctx *gin.Context, param string) (models.Contract, bool) {
	var contract models.Contract

	contractID, ok := utils.ParamID(ctx, param)
	if !ok {
		notFound(ctx)
		return contract, false
	}

	if err := db.DB.WithContext(ctx.Request.Context()).Preload("Project").First(&contract, contractID).Error; err != nil {
		loadFailed(ctx, resourceContract, err)
		return contract, false
	}

	isWrite := !types.SafeMethods[ctx.Request.Method]
	if d := permissions.CheckObject(utils.GetCaller(ctx), contract.OwnerID(), isWrite); !d.Allowed() {
		deny(ctx, d)
		return contract, false
	}

	return contract, true
}

func GetContract(ctx *gin.Context) {
	contract, ok := loadContract(ctx, "contract_id")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, serializers.ContractRead(&contract))
}

// UpdateContract serves PUT and PATCH. Only staff may move a contract to
// another user.
func UpdateContract(ctx *gin.Context) {
	contract, ok := loadContract(ctx, "contract_id")
	if !ok {
		return
	}

	var body serializers.ContractInput

	if !bindJSON(ctx, &body) {
		return
	}

	tx := db.DB.WithContext(ctx.Request.Context())
	schema := serializers.Select(ctx.Request.Method, utils.GetCaller(ctx))

	fields, err := schema.ValidateContract(tx, body, isPartial(ctx), &contract)

	if err != nil {
		writeError(ctx, "failed to validate contract", err)
		return
	}

	fields.Apply(&contract)

	if err := tx.Omit(clause.Associations).Save(&contract).Error; err != nil {
		saveFailed(ctx, "failed to update contract", err, serializers.ContractConflict())
		return
	}

	contractChanged(ctx, "update", feed.ContractUpdated, &contract)
}

// DeleteContract cascades to the contract's logs.
func DeleteContract(ctx *gin.Context) {
	contract, ok := loadContract(ctx, "contract_id")
	if !ok {
		return
	}

	if err := db.DB.WithContext(ctx.Request.Context()).Delete(&contract).Error; err != nil {
		internalError(ctx, "failed to delete contract", err)
		return
	}

	recordWrite(ctx, "delete", resourceContract, contract.ID)
	Activity.Publish(feed.Event{Type: feed.ContractDeleted, ID: contract.ID, OwnerID: contract.UserID})

	ctx.Status(http.StatusNoContent)
}

// contractChanged reloads the contract for the response and announces the change.
func contractChanged(ctx *gin.Context, action, event string, contract *models.Contract) {
	if err := db.DB.WithContext(ctx.Request.Context()).Preload("Project").First(contract, contract.ID).Error; err != nil {
		internalError(ctx, "failed to reload contract", err)
		return
	}

	recordWrite(ctx, action, resourceContract, contract.ID)
	Activity.Publish(feed.Event{Type: event, ID: contract.ID, OwnerID: contract.UserID})

	status := http.StatusOK
	if action == "create" {
		status = http.StatusCreated
	}
	ctx.JSON(status, serializers.ContractRead(contract))
}

// filterByID narrows query by an optional integer query parameter.
func filterByID(ctx *gin.Context, query *gorm.DB, param, column string) (*gorm.DB, bool) {
	id, present, err := utils.QueryID(ctx, param)
	if err != nil {
		badRequest(ctx, "Select a valid choice. That choice is not one of the available choices.")
		return nil, false
	}
	if present {
		query = query.Where(column+" = ?", id)
	}
	return query, true
}

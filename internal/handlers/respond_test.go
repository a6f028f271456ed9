package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/serializers"
	"github.com/monocle-dev/timetrack/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSaveFailedMapsDuplicateRowsToConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.MigrateDatabase(conn, config.DriverSQLite))

	user := models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", DateJoined: time.Now()}
	require.NoError(t, conn.Create(&user).Error)
	project := models.Project{Name: "Apollo"}
	require.NoError(t, conn.Create(&project).Error)
	contract := models.Contract{UserID: user.ID, ProjectID: project.ID, HourlyPrice: decimal.NewFromInt(10), HourlyPriceCurrency: "USD"}
	require.NoError(t, conn.Create(&contract).Error)

	day := datatypes.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, conn.Create(&models.Timelog{ContractID: contract.ID, Date: day, HoursWorked: decimal.NewFromInt(8)}).Error)

	dupErr := conn.Create(&models.Timelog{ContractID: contract.ID, Date: day, HoursWorked: decimal.NewFromInt(2)}).Error
	require.Error(t, dupErr)
	assert.True(t, isUniqueViolation(dupErr))

	dupContract := conn.Create(&models.Contract{UserID: user.ID, ProjectID: project.ID, HourlyPrice: decimal.NewFromInt(5), HourlyPriceCurrency: "USD"}).Error
	require.Error(t, dupContract)
	assert.True(t, isUniqueViolation(dupContract))

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/users/1/logs/", nil)

	saveFailed(ctx, "failed to create timelog", dupErr, serializers.TimelogConflict())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Log for this contract already exists for the given date"}, body.Fields["non_field_errors"])
}

func TestSaveFailedReportsOtherErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assert.False(t, isUniqueViolation(errors.New("connection reset")))

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/users/1/contracts/", nil)

	saveFailed(ctx, "failed to create contract", errors.New("connection reset"), serializers.ContractConflict())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "Contract already exists")
}

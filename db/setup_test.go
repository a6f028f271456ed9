package db

import (
	"testing"

	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "file:x?_pragma=foreign_keys(1)", withForeignKeys("file:x"))
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)", withForeignKeys("file:x?mode=memory"))
}

func TestMigrateAndCascade(t *testing.T) {
	conn, err := OpenSQLite("file:setup_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, MigrateDatabase(conn, config.DriverSQLite))

	user := models.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(&user).Error)
	project := models.Project{Name: "Engine"}
	require.NoError(t, conn.Create(&project).Error)
	contract := models.Contract{UserID: user.ID, ProjectID: project.ID, HourlyPrice: decimal.NewFromInt(50), HourlyPriceCurrency: "USD"}
	require.NoError(t, conn.Create(&contract).Error)

	duplicate := models.Contract{UserID: user.ID, ProjectID: project.ID, HourlyPrice: decimal.NewFromInt(60), HourlyPriceCurrency: "USD"}
	assert.Error(t, conn.Create(&duplicate).Error)

	require.NoError(t, conn.Delete(&user).Error)

	var count int64
	require.NoError(t, conn.Model(&models.Contract{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPingWithoutConnection(t *testing.T) {
	saved := DB
	DB = nil
	defer func() { DB = saved }()

	assert.Error(t, Ping(t.Context()))
}

package serializers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	alice    models.User
	bob      models.User
	project  models.Project
	contract models.Contract
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.MigrateDatabase(conn, config.DriverSQLite))

	f := &fixture{
		db:      conn,
		alice:   models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"},
		bob:     models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"},
		project: models.Project{Name: "Apollo"},
	}
	require.NoError(t, conn.Create(&f.alice).Error)
	require.NoError(t, conn.Create(&f.bob).Error)
	require.NoError(t, conn.Create(&f.project).Error)

	f.contract = models.Contract{
		UserID:              f.alice.ID,
		ProjectID:           f.project.ID,
		HourlyPrice:         decimal.NewFromInt(50),
		HourlyPriceCurrency: "USD",
	}
	require.NoError(t, conn.Create(&f.contract).Error)

	return f
}

func caller(u models.User) permissions.Caller {
	return permissions.Caller{ID: u.ID, IsStaff: u.IsStaff, Authenticated: true}
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var in T
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var errs FieldErrors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestSelect(t *testing.T) {
	user := permissions.Caller{ID: 1, Authenticated: true}

	assert.Equal(t, Read, Select(http.MethodGet, user).Mode)
	assert.Equal(t, Read, Select(http.MethodOptions, user).Mode)
	assert.Equal(t, Write, Select(http.MethodPost, user).Mode)
	assert.Equal(t, Write, Select(http.MethodPatch, user).Mode)
	assert.Equal(t, user, Select(http.MethodDelete, user).Caller)
}

func TestValueParsing(t *testing.T) {
	in := decode[ContractInput](t, `{"user": "7", "project": true, "hourly_price": 12.5}`)

	id, msg := in.User.PK()
	assert.Empty(t, msg)
	assert.EqualValues(t, 7, id)

	_, msg = in.Project.PK()
	assert.Equal(t, "Incorrect type. Expected pk value, received bool.", msg)

	price, msg := in.HourlyPrice.Decimal()
	assert.Empty(t, msg)
	assert.True(t, price.Equal(decimal.RequireFromString("12.5")))
}

func TestValidateContractCreate(t *testing.T) {
	f := newFixture(t)
	other := models.Project{Name: "Gemini"}
	require.NoError(t, f.db.Create(&other).Error)

	schema := Select(http.MethodPost, caller(f.alice))

	fields, err := schema.ValidateContract(f.db, decode[ContractInput](t,
		`{"user": 1, "project": 2, "hourly_price": "42.50"}`), false, nil)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, fields.UserID)
	assert.Equal(t, other.ID, fields.ProjectID)
	assert.Equal(t, "42.50", fields.HourlyPrice.StringFixed(2))
	assert.Equal(t, "USD", fields.Currency)
}

func TestValidateContractErrors(t *testing.T) {
	f := newFixture(t)
	staff := models.User{Username: "root", Email: "root@example.com", PasswordHash: "x", IsStaff: true}
	require.NoError(t, f.db.Create(&staff).Error)

	tests := []struct {
		name   string
		caller models.User
		body   string
		field  string
		msg    string
	}{
		{"missing fields", f.alice, `{}`, "hourly_price", msgRequired},
		{"other user", f.bob, `{"user": 1, "project": 1, "hourly_price": 10}`, "user", msgNoPermission},
		{"unknown project", f.alice, `{"user": 1, "project": 99, "hourly_price": 10}`, "project", `Invalid pk "99" - object does not exist.`},
		{"negative price", f.alice, `{"user": 1, "project": 1, "hourly_price": -1}`, "hourly_price", "Ensure this value is greater than or equal to 0."},
		{"bad price", f.alice, `{"user": 1, "project": 1, "hourly_price": "abc"}`, "hourly_price", msgInvalidNumber},
		{"too many places", f.alice, `{"user": 1, "project": 1, "hourly_price": "1.234"}`, "hourly_price", "Ensure that there are no more than 2 decimal places."},
		{"bad currency", f.alice, `{"user": 1, "project": 1, "hourly_price": 1, "hourly_price_currency": "XYZ1"}`, "hourly_price_currency", `"XYZ1" is not a valid choice.`},
		{"duplicate pair", f.alice, `{"user": 1, "project": 1, "hourly_price": 10}`, NonFieldErrors, msgContractExists},
		{"duplicate pair for staff", staff, `{"user": 1, "project": 1, "hourly_price": 10}`, NonFieldErrors, msgContractExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := Select(http.MethodPost, caller(tt.caller))
			_, err := schema.ValidateContract(f.db, decode[ContractInput](t, tt.body), false, nil)
			assert.Contains(t, fieldErrors(t, err)[tt.field], tt.msg)
		})
	}
}

func TestValidateContractPartialUpdate(t *testing.T) {
	f := newFixture(t)

	schema := Select(http.MethodPatch, caller(f.alice))
	fields, err := schema.ValidateContract(f.db, decode[ContractInput](t, `{"hourly_price": "60"}`), true, &f.contract)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, fields.UserID)
	assert.Equal(t, "60.00", fields.HourlyPrice.StringFixed(2))

	// Reassigning to someone else is a staff-only operation.
	_, err = schema.ValidateContract(f.db, decode[ContractInput](t, `{"user": 2}`), true, &f.contract)
	assert.Contains(t, fieldErrors(t, err)["user"], msgNoPermission)
}

func TestValidateTimelog(t *testing.T) {
	f := newFixture(t)
	schema := Select(http.MethodPost, caller(f.alice))

	fields, err := schema.ValidateTimelog(f.db, decode[TimelogInput](t,
		`{"contract": 1, "date": "2024-03-01", "hours_worked": "8"}`), false, nil, schema.AllowedContracts())
	require.NoError(t, err)
	assert.Equal(t, f.contract.ID, fields.ContractID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), fields.Date)

	log := models.Timelog{}
	fields.Apply(&log)
	require.NoError(t, f.db.Create(&log).Error)

	_, err = schema.ValidateTimelog(f.db, decode[TimelogInput](t,
		`{"contract": 1, "date": "2024-03-01", "hours_worked": "4"}`), false, nil, schema.AllowedContracts())
	assert.Contains(t, fieldErrors(t, err)[NonFieldErrors], msgTimelogExists)

	// The log being updated does not collide with itself.
	_, err = schema.ValidateTimelog(f.db, decode[TimelogInput](t, `{"hours_worked": "4"}`), true, &log, schema.AllowedContracts())
	assert.NoError(t, err)
}

func TestValidateTimelogHoursRange(t *testing.T) {
	f := newFixture(t)
	schema := Select(http.MethodPost, caller(f.alice))

	for _, hours := range []string{"0", "0.25", "12", "24", "24.00"} {
		_, err := schema.ValidateTimelog(f.db, decode[TimelogInput](t,
			`{"contract": 1, "date": "2024-04-01", "hours_worked": "`+hours+`"}`), false, nil, schema.AllowedContracts())
		assert.NoError(t, err, hours)
	}

	for _, hours := range []string{"-1", "-0.01", "24.01", "25", "100"} {
		_, err := schema.ValidateTimelog(f.db, decode[TimelogInput](t,
			`{"contract": 1, "date": "2024-04-01", "hours_worked": "`+hours+`"}`), false, nil, schema.AllowedContracts())
		assert.True(t, fieldErrors(t, err).Has("hours_worked"), hours)
	}
}

func TestValidateTimelogHidesForeignContracts(t *testing.T) {
	f := newFixture(t)
	schema := Select(http.MethodPost, caller(f.bob))

	_, err := schema.ValidateTimelog(f.db, decode[TimelogInput](t,
		`{"contract": 1, "date": "2024-03-01", "hours_worked": 8}`), false, nil, schema.AllowedContracts())
	assert.Equal(t, []string{`Invalid pk "1" - object does not exist.`}, fieldErrors(t, err)["contract"])

	_, err = schema.ValidateTimelog(f.db, decode[TimelogInput](t,
		`{"contract": 1, "date": "03/01/2024", "hours_worked": 8}`), false, nil, schema.AllowedContracts())
	assert.Contains(t, fieldErrors(t, err)["date"], msgDateFormat)
}

func TestValidateRegistration(t *testing.T) {
	f := newFixture(t)

	fields, err := ValidateRegistration(f.db, decode[RegisterInput](t,
		`{"username": "carol", "email": "Carol@Example.com", "password": "correct-horse-9", "confirm_password": "correct-horse-9"}`))
	require.NoError(t, err)
	assert.Equal(t, "carol", fields.Username)
	assert.Equal(t, "carol@example.com", fields.Email)
	assert.Equal(t, "correct-horse-9", fields.Password)

	_, err = ValidateRegistration(f.db, decode[RegisterInput](t,
		`{"username": "carol", "email": "carol@example.com", "password": "correct-horse-9", "confirm_password": "correct-horse-8"}`))
	assert.Equal(t, []string{msgPasswordsDiffer}, fieldErrors(t, err)["password"])

	_, err = ValidateRegistration(f.db, decode[RegisterInput](t,
		`{"username": "alice", "email": "ALICE@example.com", "password": "correct-horse-9", "confirm_password": "correct-horse-9"}`))
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{msgUsernameTaken}, errs["username"])
	assert.Equal(t, []string{msgNotUnique}, errs["email"])

	_, err = ValidateRegistration(f.db, decode[RegisterInput](t,
		`{"username": "bad name", "email": "nope", "password": "123"}`))
	errs = fieldErrors(t, err)
	assert.Equal(t, []string{msgUsernameInvalid}, errs["username"])
	assert.Equal(t, []string{msgInvalidEmail}, errs["email"])
	assert.Equal(t, []string{msgRequired}, errs["confirm_password"])
	assert.Contains(t, errs["password"], "This password is entirely numeric.")
}

func TestValidateUserUpdate(t *testing.T) {
	f := newFixture(t)

	in := decode[UserUpdateInput](t, `{"first_name": "Alice"}`)
	fields, err := ValidateUserUpdate(f.db, in, true, f.alice.ID)
	require.NoError(t, err)

	user := f.alice
	fields.Apply(&user, in)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "alice", user.Username)

	_, err = ValidateUserUpdate(f.db, decode[UserUpdateInput](t, `{"username": "bob"}`), true, f.alice.ID)
	assert.Equal(t, []string{msgUsernameTaken}, fieldErrors(t, err)["username"])

	_, err = ValidateUserUpdate(f.db, decode[UserUpdateInput](t, `{"first_name": "A"}`), false, f.alice.ID)
	assert.True(t, fieldErrors(t, err).Has("username"))
}

func TestRenderTimelog(t *testing.T) {
	f := newFixture(t)
	f.contract.Project = f.project

	log := models.Timelog{
		ContractID:  f.contract.ID,
		Contract:    f.contract,
		Date:        datatypes.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		HoursWorked: decimal.NewFromInt(8),
	}
	log.ID = 5

	out := TimelogRead(&log)
	assert.Equal(t, "2024-03-01", out.Date)
	assert.Equal(t, "8.00", out.HoursWorked)
	assert.Equal(t, "50.00", out.Contract.HourlyPrice)
	assert.Equal(t, "Apollo", out.Contract.Project.Name)
}

func TestFieldErrors(t *testing.T) {
	errs := FieldErrors{}
	assert.NoError(t, errs.Err())

	errs.Add("name", msgRequired)
	errs.Merge(FieldErrors{"name": {msgBlank}, NonFieldErrors: {"x"}})
	assert.Equal(t, []string{msgRequired, msgBlank}, errs["name"])
	assert.EqualError(t, errs, "validation failed: name: This field is required. This field may not be blank.; non_field_errors: x")
}

package serializers

import (
	"strings"
	"time"

	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/permissions"
	"github.com/monocle-dev/timetrack/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	hoursMaxDigits = 4
	hoursPlaces    = 2
)

const msgTimelogExists = "Log for this contract already exists for the given date"

type TimelogInput struct {
	Date        *string `json:"date"`
	Contract    *Value  `json:"contract"`
	HoursWorked *Value  `json:"hours_worked"`
}

type TimelogFields struct {
	ContractID  uint
	Date        time.Time
	HoursWorked decimal.Decimal
}

func (f TimelogFields) Apply(t *models.Timelog) {
	t.ContractID = f.ContractID
	t.Date = datatypes.Date(f.Date)
	t.HoursWorked = f.HoursWorked
}

// AllowedContracts is the set a timelog may reference: the caller's own
// contracts, or every contract for staff.
func (s Schema) AllowedContracts() func(*gorm.DB) *gorm.DB {
	return permissions.ContractsVisibleTo(s.Caller)
}

// ValidateTimelog checks a timelog payload. allowed restricts which contract
// ids resolve; ids outside it are reported exactly like missing ones.
func (s Schema) ValidateTimelog(tx *gorm.DB, in TimelogInput, partial bool, current *models.Timelog, allowed func(*gorm.DB) *gorm.DB) (TimelogFields, error) {
	errs := FieldErrors{}

	var fields TimelogFields
	if current != nil {
		fields = TimelogFields{
			ContractID:  current.ContractID,
			Date:        time.Time(current.Date),
			HoursWorked: current.HoursWorked,
		}
	}

	if in.Date == nil {
		if !partial {
			errs.Add("date", msgRequired)
		}
	} else if date, err := time.Parse(types.DateLayout, strings.TrimSpace(*in.Date)); err != nil {
		errs.Add("date", msgDateFormat)
	} else {
		fields.Date = date
	}

	if in.Contract == nil {
		if !partial {
			errs.Add("contract", msgRequired)
		}
	} else if id, msg := in.Contract.PK(); msg != "" {
		errs.Add("contract", msg)
	} else {
		var count int64
		if err := tx.Model(&models.Contract{}).Scopes(allowed).Where("contracts.id = ?", id).Count(&count).Error; err != nil {
			return TimelogFields{}, err
		}
		if count == 0 {
			errs.Add("contract", msgDoesNotExist(id))
		} else {
			fields.ContractID = id
		}
	}

	if in.HoursWorked == nil {
		if !partial {
			errs.Add("hours_worked", msgRequired)
		}
	} else if hours, msg := in.HoursWorked.Decimal(); msg != "" {
		errs.Add("hours_worked", msg)
	} else if hours.LessThan(decimal.NewFromInt(models.MinHoursWorked)) {
		errs.Add("hours_worked", "Ensure this value is greater than or equal to 0.")
	} else if hours.GreaterThan(decimal.NewFromInt(models.MaxHoursWorked)) {
		errs.Add("hours_worked", "Ensure this value is less than or equal to 24.")
	} else if msg := digitsExceeded(hours, hoursMaxDigits, hoursPlaces); msg != "" {
		errs.Add("hours_worked", msg)
	} else {
		fields.HoursWorked = hours.Round(hoursPlaces)
	}

	if !errs.Empty() {
		return TimelogFields{}, errs
	}

	query := tx.Model(&models.Timelog{}).
		Where("contract_id = ? AND date = ?", fields.ContractID, datatypes.Date(fields.Date))
	if current != nil {
		query = query.Where("id <> ?", current.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return TimelogFields{}, err
	}
	if count > 0 {
		errs.Add(NonFieldErrors, msgTimelogExists)
		return TimelogFields{}, errs
	}

	return fields, nil
}

func TimelogConflict() FieldErrors {
	return FieldErrors{NonFieldErrors: {msgTimelogExists}}
}

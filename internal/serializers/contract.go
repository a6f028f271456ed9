package serializers

import (
	"strings"

	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	priceMaxDigits = 14
	pricePlaces    = 2
)

const msgContractExists = "Contract already exists for the given user and project"

type ContractInput struct {
	User                *Value  `json:"user"`
	Project             *Value  `json:"project"`
	HourlyPrice         *Value  `json:"hourly_price"`
	HourlyPriceCurrency *string `json:"hourly_price_currency"`
}

type ContractFields struct {
	UserID      uint
	ProjectID   uint
	HourlyPrice decimal.Decimal
	Currency    string
}

// Apply copies the validated fields onto c.
func (f ContractFields) Apply(c *models.Contract) {
	c.UserID = f.UserID
	c.ProjectID = f.ProjectID
	c.HourlyPrice = f.HourlyPrice
	c.HourlyPriceCurrency = f.Currency
}

// ValidateContract checks a contract payload. current is nil on create; on a
// partial update absent fields keep their current values.
func (s Schema) ValidateContract(tx *gorm.DB, in ContractInput, partial bool, current *models.Contract) (ContractFields, error) {
	errs := FieldErrors{}

	fields := ContractFields{Currency: DefaultCurrency}
	if current != nil {
		fields = ContractFields{
			UserID:      current.UserID,
			ProjectID:   current.ProjectID,
			HourlyPrice: current.HourlyPrice,
			Currency:    current.HourlyPriceCurrency,
		}
	}

	if in.User == nil {
		if !partial {
			errs.Add("user", msgRequired)
		}
	} else if id, ok, err := related(tx, errs, "user", in.User, &models.User{}); err != nil {
		return ContractFields{}, err
	} else if ok {
		if !s.Caller.IsStaff && id != s.Caller.ID {
			errs.Add("user", msgNoPermission)
		} else {
			fields.UserID = id
		}
	}

	if in.Project == nil {
		if !partial {
			errs.Add("project", msgRequired)
		}
	} else if id, ok, err := related(tx, errs, "project", in.Project, &models.Project{}); err != nil {
		return ContractFields{}, err
	} else if ok {
		fields.ProjectID = id
	}

	if in.HourlyPrice == nil {
		if !partial {
			errs.Add("hourly_price", msgRequired)
		}
	} else if price, msg := in.HourlyPrice.Decimal(); msg != "" {
		errs.Add("hourly_price", msg)
	} else if price.IsNegative() {
		errs.Add("hourly_price", "Ensure this value is greater than or equal to 0.")
	} else if msg := digitsExceeded(price, priceMaxDigits, pricePlaces); msg != "" {
		errs.Add("hourly_price", msg)
	} else {
		fields.HourlyPrice = price.Round(pricePlaces)
	}

	if in.HourlyPriceCurrency != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.HourlyPriceCurrency))
		if isCurrency(code) {
			fields.Currency = code
		} else {
			errs.Add("hourly_price_currency", "\""+*in.HourlyPriceCurrency+"\" is not a valid choice.")
		}
	}

	if !errs.Empty() {
		return ContractFields{}, errs
	}

	query := tx.Model(&models.Contract{}).Where("user_id = ? AND project_id = ?", fields.UserID, fields.ProjectID)
	if current != nil {
		query = query.Where("id <> ?", current.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return ContractFields{}, err
	}
	if count > 0 {
		errs.Add(NonFieldErrors, msgContractExists)
		return ContractFields{}, errs
	}

	return fields, nil
}

// related resolves a primary key field against model's table.
func related(tx *gorm.DB, errs FieldErrors, field string, v *Value, model any) (uint, bool, error) {
	id, msg := v.PK()
	if msg != "" {
		errs.Add(field, msg)
		return 0, false, nil
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return 0, false, err
	}
	if count == 0 {
		errs.Add(field, msgDoesNotExist(id))
		return 0, false, nil
	}
	return id, true, nil
}

// ContractConflict is reported when the store rejects a duplicate pair that
// slipped past the pre-insert check.
func ContractConflict() FieldErrors {
	return FieldErrors{NonFieldErrors: {msgContractExists}}
}

package serializers

import (
	"time"

	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/types"
)

func UserRead(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func ProjectRead(p *models.Project) types.ProjectResponse {
	return types.ProjectResponse{ID: p.ID, Name: p.Name}
}

// ContractRead expects Project to be preloaded.
func ContractRead(c *models.Contract) types.ContractResponse {
	return types.ContractResponse{
		ID:                  c.ID,
		User:                c.UserID,
		Project:             ProjectRead(&c.Project),
		HourlyPrice:         c.HourlyPrice.StringFixed(pricePlaces),
		HourlyPriceCurrency: c.HourlyPriceCurrency,
	}
}

// TimelogRead expects Contract.Project to be preloaded.
func TimelogRead(t *models.Timelog) types.TimelogResponse {
	return types.TimelogResponse{
		ID:          t.ID,
		Date:        time.Time(t.Date).Format(types.DateLayout),
		HoursWorked: t.HoursWorked.StringFixed(hoursPlaces),
		Contract:    ContractRead(&t.Contract),
	}
}

// Many renders a slice with one of the functions above.
func Many[M any, R any](rows []M, render func(*M) R) []R {
	out := make([]R, 0, len(rows))
	for i := range rows {
		out = append(out, render(&rows[i]))
	}
	return out
}

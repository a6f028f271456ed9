package permissions

import (
	"fmt"

	"github.com/monocle-dev/timetrack/internal/models"
	"gorm.io/gorm"
)

// ContractsOwnedBy restricts a contracts query to one user.
func ContractsOwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("contracts.user_id = ?", userID)
	}
}

// TimelogsOwnedBy restricts a timelogs query to logs under the user's contracts.
func TimelogsOwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("timelogs.contract_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.Contract{}).Select("id").Where("user_id = ?", userID))
	}
}

func ContractsVisibleTo(caller Caller) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if caller.IsStaff {
			return tx
		}
		return ContractsOwnedBy(caller.ID)(tx)
	}
}

func TimelogsVisibleTo(caller Caller) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if caller.IsStaff {
			return tx
		}
		return TimelogsOwnedBy(caller.ID)(tx)
	}
}

// ContractOwner is the user a contract belongs to.
func ContractOwner(tx *gorm.DB, contractID uint) (uint, error) {
	var contract models.Contract
	if err := tx.Select("id", "user_id").First(&contract, contractID).Error; err != nil {
		return 0, err
	}
	return contract.UserID, nil
}

// TimelogOwner follows timelog -> contract -> user.
func TimelogOwner(tx *gorm.DB, timelog *models.Timelog) (uint, error) {
	if timelog.Contract.ID == timelog.ContractID && timelog.Contract.ID != 0 {
		return timelog.Contract.UserID, nil
	}

	owner, err := ContractOwner(tx, timelog.ContractID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve owner of timelog %d: %w", timelog.ID, err)
	}
	return owner, nil
}

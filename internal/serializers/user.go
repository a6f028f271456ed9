package serializers

import (
	"strings"

	"github.com/monocle-dev/timetrack/internal/auth"
	"github.com/monocle-dev/timetrack/internal/models"
	"gorm.io/gorm"
)

const (
	maxUsername = 150
	maxEmail    = 254
	maxName     = 150
)

const (
	msgUsernameTaken   = "A user with that username already exists."
	msgUsernameInvalid = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgPasswordsDiffer = "Password fields do not match."
)

type RegisterInput struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
}

type UserUpdateInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UserFields struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// ValidateRegistration checks a sign-up payload. The password confirmation is
// compared only once every field passed on its own.
func ValidateRegistration(tx *gorm.DB, in RegisterInput) (UserFields, error) {
	errs := FieldErrors{}

	fields, err := userFields(tx, errs, UserUpdateInput{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}, false, 0)
	if err != nil {
		return UserFields{}, err
	}

	password := secret(errs, "password", in.Password)
	confirm := secret(errs, "confirm_password", in.ConfirmPassword)

	if !errs.Has("password") && password != "" {
		for _, msg := range auth.ValidatePassword(password, fields.Username, fields.Email) {
			errs.Add("password", msg)
		}
	}

	if !errs.Empty() {
		return UserFields{}, errs
	}

	if password != confirm {
		errs.Add("password", msgPasswordsDiffer)
		return UserFields{}, errs
	}

	fields.Password = password
	return fields, nil
}

// ValidateUserUpdate checks a profile update for the user with id userID.
// Fields absent from a partial update come back empty.
func ValidateUserUpdate(tx *gorm.DB, in UserUpdateInput, partial bool, userID uint) (UserFields, error) {
	errs := FieldErrors{}

	fields, err := userFields(tx, errs, in, partial, userID)
	if err != nil {
		return UserFields{}, err
	}
	return fields, errs.Err()
}

// Apply copies the fields present in in onto u.
func (f UserFields) Apply(u *models.User, in UserUpdateInput) {
	if in.Username != nil {
		u.Username = f.Username
	}
	if in.Email != nil {
		u.Email = f.Email
	}
	if in.FirstName != nil {
		u.FirstName = f.FirstName
	}
	if in.LastName != nil {
		u.LastName = f.LastName
	}
}

func userFields(tx *gorm.DB, errs FieldErrors, in UserUpdateInput, partial bool, excludeID uint) (UserFields, error) {
	var fields UserFields

	if username, ok := text(errs, "username", in.Username, true, partial, maxUsername); ok {
		if !isUsername(username) {
			errs.Add("username", msgUsernameInvalid)
		} else if taken, err := exists(tx, "username = ?", username, excludeID); err != nil {
			return UserFields{}, err
		} else if taken {
			errs.Add("username", msgUsernameTaken)
		} else {
			fields.Username = username
		}
	}

	if email, ok := text(errs, "email", in.Email, true, partial, maxEmail); ok {
		email = strings.ToLower(email)
		if !isEmail(email) {
			errs.Add("email", msgInvalidEmail)
		} else if taken, err := exists(tx, "LOWER(email) = ?", email, excludeID); err != nil {
			return UserFields{}, err
		} else if taken {
			errs.Add("email", msgNotUnique)
		} else {
			fields.Email = email
		}
	}

	fields.FirstName, _ = text(errs, "first_name", in.FirstName, false, true, maxName)
	fields.LastName, _ = text(errs, "last_name", in.LastName, false, true, maxName)

	return fields, nil
}

func exists(tx *gorm.DB, cond, value string, excludeID uint) (bool, error) {
	query := tx.Model(&models.User{}).Where(cond, value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func secret(errs FieldErrors, field string, value *string) string {
	if value == nil {
		errs.Add(field, msgRequired)
		return ""
	}
	if *value == "" {
		errs.Add(field, msgBlank)
	}
	return *value
}

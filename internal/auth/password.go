package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "12345678": true,
	"123456789": true, "1234567890": true, "qwerty123": true, "qwertyuiop": true,
	"iloveyou": true, "sunshine": true, "princess": true, "football": true,
	"baseball": true, "welcome1": true, "admin123": true, "letmein1": true,
	"trustno1": true, "superman": true, "starwars": true, "passw0rd": true,
	"abc12345": true, "11111111": true, "00000000": true, "dragon123": true,
	"monkey123": true, "changeme": true, "whatever": true, "computer": true,
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword returns every rule the password breaks; nil means acceptable.
func ValidatePassword(password, username, email string) []string {
	var problems []string

	lower := strings.ToLower(password)

	if similar(lower, username) {
		problems = append(problems, "The password is too similar to the username.")
	}
	if local, _, _ := strings.Cut(email, "@"); similar(lower, local) {
		problems = append(problems, "The password is too similar to the email address.")
	}

	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}

	if commonPasswords[lower] {
		problems = append(problems, "This password is too common.")
	}

	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

func similar(password, attribute string) bool {
	attribute = strings.ToLower(strings.TrimSpace(attribute))
	if len(attribute) < 3 || password == "" {
		return false
	}
	return strings.Contains(password, attribute) || strings.Contains(attribute, password)
}

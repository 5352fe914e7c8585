package users

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const specialChars = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email")
	}
	return nil
}

// validatePassword enforces the signup password policy: at least 8
// characters with an uppercase letter, a lowercase letter, a digit, and a
// special character.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errPasswordPolicy
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !strings.ContainsAny(password, specialChars) {
		return errPasswordPolicy
	}

	return nil
}

var errPasswordPolicy = errors.New(
	"password is not strong enough, must be at least 8 characters long, include at least one uppercase letter, one lowercase letter, one number and one special character (e.g., !, @, #, $, etc.)",
)

func validateCreateRequest(req *CreateUserRequest) error {
	if req.FullName == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		return errors.New("all fields are required")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	return validatePassword(req.Password)
}

func validateUpdateRequest(req *UpdateUserRequest) error {
	if req.FullName == "" || req.Email == "" || req.Username == "" ||
		len(req.Roles) == 0 || req.Active == nil {
		return errors.New("all fields are required")
	}
	return validateEmail(req.Email)
}

package validators

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MaxUsernameLength = 150

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// IsUsernameValid accepts letters, digits and @ . + - _ up to 150 chars.
func IsUsernameValid(username string) bool {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(username)
}

func usernameRule(fl validator.FieldLevel) bool {
	return IsUsernameValid(fl.Field().String())
}

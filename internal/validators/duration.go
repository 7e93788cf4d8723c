package validators

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidDuration = errors.New("invalid duration")

// ParseDuration reads "HH:MM" or a bare number of minutes.
func ParseDuration(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidDuration
	}

	if h, m, ok := strings.Cut(value, ":"); ok {
		hours, err := strconv.Atoi(h)
		if err != nil || hours < 0 {
			return 0, ErrInvalidDuration
		}
		minutes, err := strconv.Atoi(m)
		if err != nil || minutes < 0 || minutes > 59 || len(m) != 2 {
			return 0, ErrInvalidDuration
		}
		return hours*60 + minutes, nil
	}

	minutes, err := strconv.Atoi(value)
	if err != nil || minutes < 0 {
		return 0, ErrInvalidDuration
	}
	return minutes, nil
}

func durationRule(fl validator.FieldLevel) bool {
	_, err := ParseDuration(fl.Field().String())
	return err == nil
}

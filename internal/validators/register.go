package validators

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register installs the custom rules on gin's validator engine. Safe to call
// more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// report fields by their form name so errors land next to the input
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation("username", usernameRule); err != nil {
		return err
	}
	return v.RegisterValidation("duration", durationRule)
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

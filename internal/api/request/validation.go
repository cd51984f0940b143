package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

var validate = validator.New()

var roleNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

func init() {
	validate.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
		return roleNameRegex.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("module", func(fl validator.FieldLevel) bool {
		for _, m := range model.Modules {
			if fl.Field().String() == m {
				return true
			}
		}
		return false
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}

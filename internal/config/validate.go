package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	metricNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		// region: exactly [x, y, width, height] with a positive size.
		_ = validate.RegisterValidation("region", func(fl validator.FieldLevel) bool {
			v := fl.Field()
			if v.Kind() != reflect.Slice || v.Len() != 4 {
				return false
			}
			return v.Index(2).Int() > 0 && v.Index(3).Int() > 0
		})
		// metricname: a valid prometheus name component or label name.
		_ = validate.RegisterValidation("metricname", func(fl validator.FieldLevel) bool {
			return metricNameRe.MatchString(fl.Field().String())
		})
		// ascending: strictly increasing numbers, as histogram buckets require.
		_ = validate.RegisterValidation("ascending", func(fl validator.FieldLevel) bool {
			v := fl.Field()
			if v.Kind() != reflect.Slice {
				return false
			}
			for i := 1; i < v.Len(); i++ {
				if v.Index(i).Float() <= v.Index(i-1).Float() {
					return false
				}
			}
			return true
		})
	})
	return validate
}

// Validate checks the config. Errors wrap ErrInvalidConfig and name every
// offending key.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "region":
		return key + " must be [x, y, width, height] with positive width and height"
	case "metricname":
		return fmt.Sprintf("%s must match [a-zA-Z_][a-zA-Z0-9_]* (got %q)", key, fe.Value())
	case "ascending":
		return key + " must be strictly increasing"
	case "required":
		return key + " is required"
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", key, fe.Param())
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s fails %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s fails %s", key, fe.Tag())
	}
}

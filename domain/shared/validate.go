package shared

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator 返回共享的 validator 实例，字段名使用 json tag。
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct 校验结构体，第一个失败字段转换为 ValidationError。
func ValidateStruct(entity string, v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError(entity, "", err.Error())
	}

	fe := verrs[0]
	return NewValidationError(entity, fe.Field(), describeFieldError(fe))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "url", "http_url":
		return fe.Field() + " must be a valid URL"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

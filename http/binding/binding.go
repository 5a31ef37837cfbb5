package binding

import (
	"errors"
	"fmt"
	"net/http"

	validatorV10 "github.com/go-playground/validator/v10"
)

type BindError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e BindError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s' %s", e.Type, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

type ValidationErrors []BindError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", ve[0].Error())
}

// Query 使用默认的查询参数解析器绑定查询参数到结构体并校验
func Query(r *http.Request, v any) error {
	if err := NewQueryParser().Parse(r.URL.Query(), v); err != nil {
		return err
	}
	return validate(v)
}

func validate(v any) error {
	err := validator.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validatorV10.ValidationErrors
	if errors.As(err, &validationErrors) {
		bindErrors := make(ValidationErrors, 0, len(validationErrors))
		for _, fe := range validationErrors {
			bindErrors = append(bindErrors, BindError{
				Type:    "validation_error",
				Field:   fe.Field(),
				Message: getValidationMessage(fe),
			})
		}
		return bindErrors
	}
	return &BindError{
		Type:    "validation_error",
		Message: err.Error(),
	}
}

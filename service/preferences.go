package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/homerec/core"
)

// PreferencesInput 是请求体中的偏好。指针字段区分“未给出”（使用默认值）与显式的零值。
type PreferencesInput struct {
	Budget        *float64 `json:"budget"`
	Location      *string  `json:"location"`
	MinBedrooms   *int     `json:"min_bedrooms"`
	MinBathrooms  *int     `json:"min_bathrooms"`
	MinSquareFeet *int     `json:"min_square_feet"`
}

// RecommendRequest 是 POST /api/recommend 的请求体。
type RecommendRequest struct {
	Preferences PreferencesInput `json:"preferences"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Resolve 填充默认值并校验，失败时返回 INVALID_INPUT。
func (in PreferencesInput) Resolve() (core.Preferences, error) {
	prefs := core.DefaultPreferences()
	if in.Budget != nil {
		prefs.Budget = *in.Budget
	}
	if in.Location != nil {
		prefs.Location = strings.TrimSpace(*in.Location)
	}
	if in.MinBedrooms != nil {
		prefs.MinBedrooms = *in.MinBedrooms
	}
	if in.MinBathrooms != nil {
		prefs.MinBathrooms = *in.MinBathrooms
	}
	if in.MinSquareFeet != nil {
		prefs.MinSquareFeet = *in.MinSquareFeet
	}

	if err := validate.Struct(prefs); err != nil {
		return core.Preferences{}, invalidInput(err)
	}
	return prefs, nil
}

func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "invalid preferences", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

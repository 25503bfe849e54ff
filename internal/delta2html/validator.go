package delta2html

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("format", formatValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("paragraphTag", paragraphTagValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

// Пустой формат означает HTML
func formatValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || slices.Contains(Formats, value)
}

func paragraphTagValidator(fl validator.FieldLevel) bool {
	return slices.Contains(paragraphTags, fl.Field().String())
}

var paragraphTags = []string{"p", "div", "section", "article", "span"}

// validationError ошибка каталога для первого поля, не прошедшего проверку.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierrors.ErrValidation.WithFormattedMessage(err.Error())
	}

	fe := verrs[0]
	if fe.Tag() == "format" {
		return apierrors.ErrUnsupportedFormat.WithFormattedMessage(fmt.Sprint(fe.Value()))
	}
	return apierrors.ErrValidation.WithFormattedMessage(fe.Field() + ": " + fe.Tag())
}

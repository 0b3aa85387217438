package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes one invalid field of the vocabulary file
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every problem found in a vocabulary file
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid vocabulary: " + strings.Join(msgs, "; ")
}

type structValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newStructValidator() *structValidator {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		// Messages fall back to the raw validator text
		trans = nil
	}

	return &structValidator{validate: v, trans: trans}
}

// check validates s and converts validator errors into a ValidationError
func (sv *structValidator) check(s interface{}) error {
	err := sv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		msg := fe.Error()
		if sv.trans != nil {
			msg = fe.Translate(sv.trans)
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Namespace(), Message: msg})
	}
	return out
}

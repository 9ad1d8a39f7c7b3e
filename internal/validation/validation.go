package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

const (
	requiredTag  = "required"
	requiredText = "{0} is required"

	localPathTag  = "localpath"
	localPathText = "{0} must be a path on this site"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
			}
			return name
		})

		_ = validate.RegisterValidation(localPathTag, func(fl validator.FieldLevel) bool {
			return IsLocalPath(fl.Field().String())
		})
		registerTranslation(localPathTag, localPathText)
		registerTranslation(requiredTag, requiredText)
	})
	return validate, translator
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates v and returns an error wrapping ErrInvalidInput whose text
// is a readable, "; " separated list of field problems.
func Struct(v any) error {
	vd, tr := instance()
	err := vd.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !perrors.As(err, &fieldErrs) {
		return perrors.Wrapf(perrors.ErrInvalidInput, "%s", err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(tr))
	}
	return &Error{Messages: msgs}
}

// Error is a validation failure carrying one message per offending field.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *Error) UserMessage() string {
	return e.Error()
}

func (e *Error) Unwrap() error {
	return perrors.ErrInvalidInput
}

// IsLocalPath reports whether p is an absolute path on this origin, i.e. it
// starts with a single "/" and carries no scheme or host.
func IsLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	return !strings.ContainsAny(p, "\r\n")
}

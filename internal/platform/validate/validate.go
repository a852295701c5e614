// Package validate wraps go-playground/validator with english translations and
// maps failures to project errors
package validate

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "shamewizard/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// usernameRe is the reddit account name alphabet
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// Get returns the validator singleton, initializing on first use
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// messages use the config key names, not the Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"json", "mapstructure", "yaml"} {
				tag := fld.Tag.Get(key)
				if idx := strings.Index(tag, ","); idx >= 0 {
					tag = tag[:idx]
				}
				if tag == "-" {
					return fld.Name
				}
				if tag != "" {
					return tag
				}
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		registerShortMin(v, trans)
		registerUsername(v, trans)

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// Struct validates s and returns a Validation error carrying the first
// offending field, or nil
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return perr.Wrap(inv, perr.ErrorCodeInvalidArgument, "validator internal error")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// FieldAndMessage returns the first field namespace and translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			return trimNamespace(fe.Namespace()), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

// trimNamespace drops the root struct name: "Settings.bot.cooldown" -> "bot.cooldown"
func trimNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func registerShortMin(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("min", trans,
		func(ut ut.Translator) error {
			return ut.Add("min", "{0} must be at least {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("min", fe.Field(), fe.Param())
			return msg
		},
	)
}

func registerUsername(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("reddit_username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterTranslation("reddit_username", trans,
		func(ut ut.Translator) error {
			return ut.Add("reddit_username", "{0} must be a reddit username (3-20 letters, digits, _ or -)", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("reddit_username", fe.Field())
			return msg
		},
	)
}

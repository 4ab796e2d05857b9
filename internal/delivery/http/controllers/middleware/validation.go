package middleware

import (
	"Learnify/internal/service/post"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// custom validation tags
const (
	objectIDTag = "objectid"
	hashtagTag  = "hashtag"
	notBlankTag = "notblank"
)

var translator ut.Translator

// RegisterValidators installs the custom tags and english messages on gin's
// binding engine. Call once before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not validator/v10")
	}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return err
	}

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	for tag, fn := range map[string]validator.Func{
		objectIDTag: objectIDValidation,
		hashtagTag:  hashtagValidation,
		notBlankTag: notBlankValidation,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
		if err := v.RegisterTranslation(tag, translator, func(ut.Translator) error { return nil }, translateCustom); err != nil {
			return err
		}
	}
	return nil
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case objectIDTag:
		return fe.Field() + " must be a valid id"
	case hashtagTag:
		return fe.Field() + " must be a valid hashtag"
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return fe.Error()
	}
}

func objectIDValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return primitive.IsValidObjectID(s)
}

func hashtagValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && post.NormalizeHashtag(s) != ""
}

func notBlankValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(s) != ""
}

// bindingMessage flattens validator errors into one readable line.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || translator == nil {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return strings.Join(msgs, "; ")
}

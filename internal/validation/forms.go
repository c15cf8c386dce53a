// Package validation checks user-submitted forum input before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"forum/internal/models"

	"github.com/go-playground/validator/v10"
)

// Field limits shared by forms and models.
const (
	MaxTitleLength    = 72
	MaxContentLength  = 1000
	MaxNameLength     = 20
	MaxBioLength      = 252
	MaxCategoryLength = 32
	MaxUsernameLength = 150
)

// TopicForm is the input for creating or editing a topic.
type TopicForm struct {
	Title   string `json:"title" form:"title" validate:"required,max=72"`
	Content string `json:"content" form:"content" validate:"required,max=1000"`
}

// ContentForm is the input for posts and comments.
type ContentForm struct {
	Content string `json:"content" form:"content" validate:"required,max=1000"`
}

// ProfileForm is the input for creating or updating a profile.
type ProfileForm struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=20"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=20"`
	Bio       string `json:"bio" form:"bio" validate:"max=252"`
}

// CategoryForm is the input for categories and subcategories. Slug may be
// left blank to derive it from Name.
type CategoryForm struct {
	Name string `json:"name" form:"name" validate:"required,max=32"`
	Slug string `json:"slug" form:"slug" validate:"omitempty,max=50"`
}

// SignupForm is the input for account registration.
type SignupForm struct {
	Username string `json:"username" form:"username" validate:"required,max=150,username"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginForm is the input for obtaining a token.
type LoginForm struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	// Next is the local path to return to after login.
	Next string `json:"next" form:"next"`
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
	})
	return validate
}

// Struct trims string fields of form in place and validates them. Failures
// come back as a field-level validation AppError keyed by json name.
func Struct(form any) error {
	trimStrings(form)

	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return models.NewFieldValidationError(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. Letters, digits and @/./+/-/_ only."
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}

func trimStrings(form any) {
	v := reflect.ValueOf(form)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() && v.Type().Field(i).Name != "Password" {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

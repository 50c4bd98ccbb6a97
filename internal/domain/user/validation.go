package user

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	pkgerrors "user-crud-service/pkg/errors"
)

// emailPattern accepts the basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// fieldRule binds a validator tag list to a field and a message per tag.
type fieldRule struct {
	field    string
	tags     string
	messages map[string]string
}

var (
	nameRule = fieldRule{
		field: "name",
		tags:  "required,min=2",
		messages: map[string]string{
			"required": "Name is required",
			"min":      "Name must be at least 2 characters long",
		},
	}
	emailRule = fieldRule{
		field: "email",
		tags:  "required,basic_email",
		messages: map[string]string{
			"required":    "Email is required",
			"basic_email": "Please enter a valid email",
		},
	}
	ageRule = fieldRule{
		field: "age",
		tags:  "min=0,max=150",
		messages: map[string]string{
			"min": "Age cannot be negative",
			"max": "Age seems unrealistic",
		},
	}
)

func (r fieldRule) check(value any, verr *pkgerrors.ValidationError) {
	err := validate.Var(value, r.tags)
	if err == nil {
		return
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.Add(r.field, err.Error())
		return
	}
	for _, e := range validationErrors {
		msg, ok := r.messages[e.Tag()]
		if !ok {
			msg = r.field + " is invalid"
		}
		verr.Add(r.field, msg)
	}
}

// validateFields checks each non-nil field. Callers validating a full
// record pass pointers to every required field.
func validateFields(name, email *string, age *int) error {
	verr := &pkgerrors.ValidationError{}

	if name != nil {
		nameRule.check(*name, verr)
	}
	if email != nil {
		emailRule.check(*email, verr)
	}
	if age != nil {
		ageRule.check(*age, verr)
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}

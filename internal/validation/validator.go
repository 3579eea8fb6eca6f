package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var looseEmail = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

func init() {
	validate = validator.New()

	mustRegister("notblank", validateNotBlank)
	mustRegister("loose_email", validateLooseEmail)
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// loose_email only checks for something@something.tld, the same check the
// browser form applies.
func validateLooseEmail(fl validator.FieldLevel) bool {
	return looseEmail.MatchString(fl.Field().String())
}

const (
	usernameRules = "notblank,min=3"
	passwordRules = "required,min=6"
	emailRules    = "notblank,loose_email"
)

var messages = map[string]map[string]string{
	"username": {
		"notblank": "Enter a username.",
		"min":      "Username is too short (minimum 3 characters).",
	},
	"password": {
		"required": "Enter a password.",
		"min":      "Password is too short (minimum 6 characters).",
	},
	"email": {
		"notblank":    "Enter an email address.",
		"loose_email": "Invalid email address.",
	},
}

func check(field, value, rules string) string {
	err := validate.Var(value, rules)
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid " + field + "."
	}
	if msg, ok := messages[field][verrs[0].Tag()]; ok {
		return msg
	}
	return "Invalid " + field + "."
}

// ValidateUsername returns "" for a valid username, otherwise the message to show.
func ValidateUsername(username string) string {
	return check("username", strings.TrimSpace(username), usernameRules)
}

// ValidatePassword returns "" for a valid password, otherwise the message to show.
func ValidatePassword(password string) string {
	return check("password", password, passwordRules)
}

// ValidateEmail returns "" for a valid email address, otherwise the message to show.
func ValidateEmail(email string) string {
	return check("email", strings.TrimSpace(email), emailRules)
}

// ValidateRegistration reports the first failing field in form order:
// username, email, password.
func ValidateRegistration(username, email, password string) string {
	if msg := ValidateUsername(username); msg != "" {
		return msg
	}
	if msg := ValidateEmail(email); msg != "" {
		return msg
	}
	return ValidatePassword(password)
}

// ValidateLogin checks what the login form checks before submitting.
func ValidateLogin(password string) string {
	return ValidatePassword(password)
}

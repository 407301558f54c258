package validator

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator *validator.Validate
	quizValidator   *QuizValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		quizValidator:   NewQuizValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateQuiz runs tag validation and the quiz business rules and returns
// every problem found.
func (v *Validator) ValidateQuiz(quiz *models.Quiz) ValidationErrors {
	var errs ValidationErrors
	if err := v.ValidateStruct(quiz); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}
	errs = append(errs, v.quizValidator.Validate(quiz)...)
	return errs
}

// Quiz returns the quiz business validator
func (v *Validator) Quiz() *QuizValidator {
	return v.quizValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("option_key", validateOptionKey)
	validate.RegisterValidation("trip_type", validateTripType)
	validate.RegisterValidation("web_url", validateWebURL)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateOptionKey checks that the answer names one of the sibling Options keys.
func validateOptionKey(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return false
	}
	options := parent.FieldByName("Options")
	if !options.IsValid() || options.Kind() != reflect.Map {
		return false
	}
	return options.MapIndex(reflect.ValueOf(fl.Field().String())).IsValid()
}

func validateTripType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validType := range models.TripTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

// ValidateWebURL reports whether raw is an absolute http(s) URL.
func ValidateWebURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Host != ""
}

func validateWebURL(fl validator.FieldLevel) bool {
	return ValidateWebURL(fl.Field().String())
}

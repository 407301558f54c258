package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-generator/internal/errors"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
)

// QuizValidator applies business rules that struct tags cannot express.
type QuizValidator struct{}

// NewQuizValidator creates a new quiz validator
func NewQuizValidator() *QuizValidator {
	return &QuizValidator{}
}

// Validate returns every rule violation found in quiz. A nil quiz is reported
// as a single error.
func (v *QuizValidator) Validate(quiz *models.Quiz) ValidationErrors {
	if quiz == nil {
		return ValidationErrors{*errors.NewValidationErrorWithRule("quiz", "is required", "required", nil)}
	}

	var errs ValidationErrors
	seen := make(map[string]string)

	for i, q := range quiz.MultipleChoice {
		field := fmt.Sprintf("multiple_choice[%d]", i)
		errs = append(errs, v.validateMultipleChoice(field, q)...)
		if prev, dup := seen[normalizeQuestion(q.Question)]; dup && q.Question != "" {
			errs = append(errs, *errors.NewValidationErrorWithRule(field+".question",
				"duplicates "+prev, "unique", q.Question))
		} else {
			seen[normalizeQuestion(q.Question)] = field
		}
	}

	for i, q := range quiz.TrueFalse {
		field := fmt.Sprintf("true_false[%d]", i)
		if prev, dup := seen[normalizeQuestion(q.Question)]; dup && q.Question != "" {
			errs = append(errs, *errors.NewValidationErrorWithRule(field+".question",
				"duplicates "+prev, "unique", q.Question))
		} else {
			seen[normalizeQuestion(q.Question)] = field
		}
	}

	return errs
}

func (v *QuizValidator) validateMultipleChoice(field string, q models.MultipleChoiceQuestion) ValidationErrors {
	var errs ValidationErrors

	texts := make(map[string]string, len(q.Options))
	for _, key := range q.SortedOptionKeys() {
		text := strings.TrimSpace(q.Options[key])
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if other, dup := texts[lower]; dup {
			errs = append(errs, *errors.NewValidationErrorWithRule(
				fmt.Sprintf("%s.options.%s", field, key),
				"repeats option "+other, "unique", text))
			continue
		}
		texts[lower] = key
	}

	if len(q.Options) > 0 && len(q.Options) != len(models.OptionLabels) {
		errs = append(errs, *errors.NewValidationErrorWithRule(field+".options",
			fmt.Sprintf("should have %d options", len(models.OptionLabels)), "len", len(q.Options)))
	}

	return errs
}

func normalizeQuestion(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

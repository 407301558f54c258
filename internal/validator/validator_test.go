package validator

import (
	"testing"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuiz() *models.Quiz {
	return &models.Quiz{
		MultipleChoice: []models.MultipleChoiceQuestion{{
			Question: "Which planet is largest?",
			Options:  map[string]string{"A": "Mars", "B": "Jupiter", "C": "Venus", "D": "Earth"},
			Answer:   "B",
		}},
		TrueFalse: []models.TrueFalseQuestion{{
			Question: "The Sun is a star.",
			Answer:   true,
		}},
		FactCheckingSources: []string{"https://example.com/planets"},
	}
}

func findRule(errs ValidationErrors, field, rule string) bool {
	for _, e := range errs {
		if e.Field == field && e.Rule == rule {
			return true
		}
	}
	return false
}

func TestValidateQuiz_Valid(t *testing.T) {
	v := New()
	assert.Empty(t, v.ValidateQuiz(validQuiz()))
}

func TestValidateQuiz_AnswerNotAnOption(t *testing.T) {
	v := New()
	quiz := validQuiz()
	quiz.MultipleChoice[0].Answer = "E"

	errs := v.ValidateQuiz(quiz)
	require.NotEmpty(t, errs)
	assert.True(t, findRule(errs, "multiple_choice[0].answer", "option_key"), "%v", errs)
}

func TestValidateQuiz_BadSourceURL(t *testing.T) {
	v := New()
	quiz := validQuiz()
	quiz.FactCheckingSources = append(quiz.FactCheckingSources, "ftp://example.com")

	errs := v.ValidateQuiz(quiz)
	require.Len(t, errs, 1)
	assert.Equal(t, "web_url", errs[0].Rule)
	assert.Equal(t, "must be an http:// or https:// URL", errs[0].Message)
}

func TestValidateQuiz_DuplicateQuestions(t *testing.T) {
	v := New()
	quiz := validQuiz()
	quiz.TrueFalse = append(quiz.TrueFalse, models.TrueFalseQuestion{Question: "the sun  is a STAR."})

	errs := v.ValidateQuiz(quiz)
	assert.True(t, findRule(errs, "true_false[1].question", "unique"), "%v", errs)
}

func TestValidateQuiz_OptionProblems(t *testing.T) {
	v := New()
	quiz := validQuiz()
	quiz.MultipleChoice[0].Options = map[string]string{"A": "Mars", "B": "mars", "C": "Venus"}
	quiz.MultipleChoice[0].Answer = "A"

	errs := v.ValidateQuiz(quiz)
	assert.True(t, findRule(errs, "multiple_choice[0].options.B", "unique"), "%v", errs)
	assert.True(t, findRule(errs, "multiple_choice[0].options", "len"), "%v", errs)
}

func TestValidateQuiz_Nil(t *testing.T) {
	errs := NewQuizValidator().Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "quiz", errs[0].Field)
}

func TestValidate_TripRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(models.TripRequest{PreferredRegion: "Europe", TripType: models.TripCultural}))

	err := v.Validate(models.TripRequest{PreferredRegion: "Europe", TripType: "cruise"})
	require.Error(t, err)
	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "trip_type", errs[0].Field)
	assert.Equal(t, "must be one of: budget, luxury, adventure, cultural", errs[0].Message)
}

func TestValidateWebURL(t *testing.T) {
	assert.True(t, ValidateWebURL("http://example.com"))
	assert.True(t, ValidateWebURL("https://example.com/a?b=c"))
	assert.False(t, ValidateWebURL("example.com"))
	assert.False(t, ValidateWebURL("https://"))
	assert.False(t, ValidateWebURL("file:///etc/passwd"))
}

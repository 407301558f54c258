package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrueFalseQuestion_AnswerShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want BoolAnswer
	}{
		{`true`, true},
		{`false`, false},
		{`"True"`, true},
		{`" false "`, false},
		{`1`, false},
		{`0`, false},
		{`null`, false},
		{`["true"]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var q TrueFalseQuestion
			require.NoError(t, json.Unmarshal([]byte(`{"question":"q","answer":`+tt.raw+`}`), &q))
			assert.Equal(t, tt.want, q.Answer)
		})
	}
}

func TestMultipleChoiceQuestion_ScalarOptions(t *testing.T) {
	var q MultipleChoiceQuestion
	require.NoError(t, json.Unmarshal([]byte(`{"question":"2+1?","options":{"A":3,"B":"four","C":2.5,"D":null},"answer":"A"}`), &q))

	assert.Equal(t, map[string]string{"A": "3", "B": "four", "C": "2.5", "D": ""}, q.Options)
	assert.Equal(t, "A", q.Answer)

	var list MultipleChoiceQuestion
	require.NoError(t, json.Unmarshal([]byte(`{"question":"q","options":[1,true,"x"],"correct_answer":"true"}`), &list))
	assert.Equal(t, map[string]string{"A": "1", "B": "true", "C": "x"}, list.Options)
	assert.Equal(t, "B", list.Answer)
}

func TestMultipleChoiceQuestion_RejectsScalarOptionsField(t *testing.T) {
	var q MultipleChoiceQuestion
	assert.Error(t, json.Unmarshal([]byte(`{"question":"q","options":"A or B"}`), &q))
}

func TestQuiz_Decode(t *testing.T) {
	var quiz Quiz
	require.NoError(t, json.Unmarshal([]byte(`{"multiple_choice":[{"question":"q","options":["a","b"],"answer":"b"}],"true_false":[{"question":"t","answer":1}]}`), &quiz))

	assert.Equal(t, 2, quiz.QuestionCount())
	assert.Equal(t, "B", quiz.MultipleChoice[0].Answer)
	assert.Equal(t, "False", quiz.TrueFalse[0].Answer.Label())
}

package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// OptionLabels are the keys assigned to list-shaped options, in order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Quiz is the final, validated quiz object produced by the pipeline.
type Quiz struct {
	MultipleChoice      []MultipleChoiceQuestion `json:"multiple_choice" validate:"dive"`
	TrueFalse           []TrueFalseQuestion      `json:"true_false" validate:"dive"`
	ValidationNotes     string                   `json:"validation_notes,omitempty"`
	FactCheckingSources []string                 `json:"fact_checking_sources" validate:"dive,web_url"`
}

// QuestionCount returns the total number of questions of both kinds.
func (q *Quiz) QuestionCount() int {
	if q == nil {
		return 0
	}
	return len(q.MultipleChoice) + len(q.TrueFalse)
}

// IsEmpty reports whether the quiz has no questions at all.
func (q *Quiz) IsEmpty() bool {
	return q.QuestionCount() == 0
}

type MultipleChoiceQuestion struct {
	Question string            `json:"question" validate:"required"`
	Options  map[string]string `json:"options" validate:"min=2,max=4,dive,keys,oneof=A B C D,endkeys,required"`
	Answer   string            `json:"answer" validate:"required,option_key"`
}

// UnmarshalJSON accepts both the object form ({"A": "..."}) and the list form
// (["...", "..."]) of options, and "correct_answer" as an alias of "answer".
func (m *MultipleChoiceQuestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question      string          `json:"question"`
		Options       json.RawMessage `json:"options"`
		Answer        string          `json:"answer"`
		CorrectAnswer string          `json:"correct_answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	options, err := decodeOptions(raw.Options)
	if err != nil {
		return err
	}

	answer := raw.Answer
	if answer == "" {
		answer = raw.CorrectAnswer
	}

	m.Question = raw.Question
	m.Options = options
	m.Answer = normalizeAnswerKey(answer, options)
	return nil
}

// SortedOptionKeys returns option keys in lexical order.
func (m MultipleChoiceQuestion) SortedOptionKeys() []string {
	keys := make([]string, 0, len(m.Options))
	for k := range m.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsCorrect reports whether key is the answer key.
func (m MultipleChoiceQuestion) IsCorrect(key string) bool {
	return m.Answer != "" && key == m.Answer
}

type TrueFalseQuestion struct {
	Question string     `json:"question" validate:"required"`
	Answer   BoolAnswer `json:"answer"`
}

// BoolAnswer decodes JSON booleans as well as "true"/"false" strings. Any
// other value is false.
type BoolAnswer bool

func (b *BoolAnswer) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = BoolAnswer(t)
	case string:
		*b = BoolAnswer(strings.EqualFold(strings.TrimSpace(t), "true"))
	default:
		*b = false
	}
	return nil
}

// Label renders the answer the way the Word export prints it.
func (b BoolAnswer) Label() string {
	if b {
		return "True"
	}
	return "False"
}

func decodeOptions(data json.RawMessage) (map[string]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err == nil {
		options := make(map[string]string, len(asMap))
		for key, value := range asMap {
			options[key] = optionText(value)
		}
		return options, nil
	}

	var asList []interface{}
	if err := json.Unmarshal(data, &asList); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	options := make(map[string]string, len(asList))
	for i, value := range asList {
		if i >= len(OptionLabels) {
			break
		}
		options[OptionLabels[i]] = optionText(value)
	}
	return options, nil
}

// optionText prints scalar option values such as 3 or true as text.
func optionText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// normalizeAnswerKey maps answers such as "b", "B)" or the full option text to
// the option key.
func normalizeAnswerKey(answer string, options map[string]string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ""
	}
	if _, ok := options[answer]; ok {
		return answer
	}
	trimmed := strings.ToUpper(strings.TrimRight(answer, ").:"))
	if _, ok := options[trimmed]; ok {
		return trimmed
	}
	for key, text := range options {
		if strings.EqualFold(strings.TrimSpace(text), answer) {
			return key
		}
	}
	return answer
}

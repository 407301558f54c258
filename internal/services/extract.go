package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-generator/internal/agents"
)

// StripCodeFence removes a leading ```json (or bare ```) marker and a
// trailing ``` marker.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ExtractFinalJSON returns the JSON object carried by the last final event.
func ExtractFinalJSON(events []agents.Event) (json.RawMessage, error) {
	var last string
	for _, e := range events {
		if e.IsFinalResponse() {
			last = e.Text
		}
	}

	cleaned := StripCodeFence(last)
	if cleaned == "" {
		return nil, ErrNoFinalJSON
	}

	var probe interface{}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse final agent output: %w", err)
	}
	if _, ok := probe.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("%w (got %T)", ErrNotJSONObject, probe)
	}
	return json.RawMessage(cleaned), nil
}

// GeneratedQuiz is the checkpoint written between generation and validation.
type GeneratedQuiz struct {
	MultipleChoice []json.RawMessage `json:"multiple_choice"`
	TrueFalse      []json.RawMessage `json:"true_false"`
}

func (g GeneratedQuiz) IsEmpty() bool {
	return len(g.MultipleChoice) == 0 && len(g.TrueFalse) == 0
}

// ClassifyQuestionLists sorts generator outputs into MCQ and T/F lists. A
// list whose first item has "options" is MCQ; one whose first item has
// "answer" but no "options" is T/F. The first list of each kind wins;
// anything else is skipped.
func ClassifyQuestionLists(outputs ...string) (GeneratedQuiz, []string) {
	generated := GeneratedQuiz{
		MultipleChoice: []json.RawMessage{},
		TrueFalse:      []json.RawMessage{},
	}
	var skipped []string

	for i, output := range outputs {
		cleaned := StripCodeFence(output)
		if cleaned == "" {
			skipped = append(skipped, fmt.Sprintf("output %d is empty", i))
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
			skipped = append(skipped, fmt.Sprintf("output %d is not a JSON list: %v", i, err))
			continue
		}
		if len(items) == 0 {
			skipped = append(skipped, fmt.Sprintf("output %d is an empty list", i))
			continue
		}

		var first map[string]json.RawMessage
		if err := json.Unmarshal(items[0], &first); err != nil {
			skipped = append(skipped, fmt.Sprintf("output %d: first item is not an object", i))
			continue
		}

		_, hasOptions := first["options"]
		_, hasAnswer := first["answer"]
		switch {
		case hasOptions:
			if len(generated.MultipleChoice) > 0 {
				skipped = append(skipped, fmt.Sprintf("output %d: duplicate MCQ list", i))
				continue
			}
			generated.MultipleChoice = items
		case hasAnswer:
			if len(generated.TrueFalse) > 0 {
				skipped = append(skipped, fmt.Sprintf("output %d: duplicate T/F list", i))
				continue
			}
			generated.TrueFalse = items
		default:
			skipped = append(skipped, fmt.Sprintf("output %d: list matches neither MCQ nor T/F", i))
		}
	}
	return generated, skipped
}

// indentJSON re-indents raw JSON with two spaces, keeping key order.
func indentJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/quiz-generator/internal/export"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/storage"
)

// QuizToWordWithSources renders the quiz JSON object into a Word document at
// path. ".docx" is appended when missing.
func QuizToWordWithSources(ctx context.Context, path, quizJSON string) string {
	var probe interface{}
	if err := json.Unmarshal([]byte(quizJSON), &probe); err != nil {
		return fmt.Sprintf("Invalid JSON: %v", err)
	}
	if _, ok := probe.(map[string]interface{}); !ok {
		return "Expected a JSON object (dict) at the top level."
	}

	var quiz models.Quiz
	if err := json.Unmarshal([]byte(quizJSON), &quiz); err != nil {
		return fmt.Sprintf("Invalid JSON: %v", err)
	}
	if quiz.IsEmpty() {
		return "No questions found in the JSON."
	}

	if !strings.EqualFold(filepath.Ext(path), ".docx") {
		path += ".docx"
	}
	if err := storage.New().EnsureDir(ctx, filepath.Dir(path)); err != nil {
		return fmt.Sprintf("Error saving Word document: %v", err)
	}
	if err := export.WriteWord(path, &quiz); err != nil {
		return fmt.Sprintf("Error saving Word document: %v", err)
	}
	return fmt.Sprintf("Quiz successfully saved as Word document at '%s'.", path)
}

// WordWriterTool exposes QuizToWordWithSources as word_writer.
func WordWriterTool() Tool {
	return FunctionTool{
		Name:        "word_writer",
		Description: "Generates a Word document from the final quiz JSON object, including validation notes and fact-checking sources.",
		Parameters: StringParams(map[string]string{
			"file_path":     "Where to save the .docx file.",
			"quiz_json_str": "The final quiz JSON object as a string.",
		}),
		Fn: func(ctx context.Context, args Args) string {
			path, err := args.RequiredString("file_path")
			if err != nil {
				return "error: " + err.Error()
			}
			quizJSON, _ := args["quiz_json_str"].(string)
			return QuizToWordWithSources(ctx, path, quizJSON)
		},
	}
}

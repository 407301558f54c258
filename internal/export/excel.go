package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
)

const (
	sheetMultipleChoice = "Multiple Choice"
	sheetTrueFalse      = "True False"
	sheetSources        = "Sources"
)

// QuizToExcel builds a workbook with one sheet per question kind and a sheet
// of fact-checking sources.
func QuizToExcel(quiz *models.Quiz) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetMultipleChoice)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	writeRow(f, sheetMultipleChoice, 1, []interface{}{"#", "Question", "Option A", "Option B", "Option C", "Option D", "Correct Answer"})
	for i, q := range quiz.MultipleChoice {
		row := []interface{}{i + 1, q.Question}
		for _, key := range models.OptionLabels {
			row = append(row, q.Options[key])
		}
		row = append(row, q.Answer)
		writeRow(f, sheetMultipleChoice, i+2, row)
	}

	if _, err := f.NewSheet(sheetTrueFalse); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	writeRow(f, sheetTrueFalse, 1, []interface{}{"#", "Question", "Answer"})
	for i, q := range quiz.TrueFalse {
		writeRow(f, sheetTrueFalse, i+2, []interface{}{len(quiz.MultipleChoice) + i + 1, q.Question, q.Answer.Label()})
	}

	if _, err := f.NewSheet(sheetSources); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	writeRow(f, sheetSources, 1, []interface{}{"Source"})
	for i, source := range quiz.FactCheckingSources {
		writeRow(f, sheetSources, i+2, []interface{}{source})
	}
	if quiz.ValidationNotes != "" {
		writeRow(f, sheetSources, len(quiz.FactCheckingSources)+3, []interface{}{"Validation Notes", quiz.ValidationNotes})
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, value := range values {
		cell := fmt.Sprintf("%c%d", 'A'+col, row)
		f.SetCellValue(sheet, cell, value)
	}
}

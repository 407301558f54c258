package export

import (
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
)

// Paragraph styles used by the quiz layout.
const (
	StyleListNumber = "List Number"
	StyleListBullet = "List Bullet"
)

// DocumentWriter is the subset of a word processor the quiz layout needs.
type DocumentWriter interface {
	Heading(text string, level uint) error
	Paragraph(text, style string, bold bool)
	PageBreak()
	Save(path string) error
}

// RenderQuiz lays the quiz out on w: questions, then validation notes, then
// sources, each section after the first on a new page.
func RenderQuiz(w DocumentWriter, quiz *models.Quiz) error {
	if err := w.Heading("Generated Quiz", 0); err != nil {
		return err
	}

	n := 0
	for _, q := range quiz.MultipleChoice {
		n++
		w.Paragraph(fmt.Sprintf("Q%d: %s", n, q.Question), StyleListNumber, false)
		for _, key := range q.SortedOptionKeys() {
			w.Paragraph(fmt.Sprintf("%s. %s", key, q.Options[key]), "", q.IsCorrect(key))
		}
	}
	for _, q := range quiz.TrueFalse {
		n++
		w.Paragraph(fmt.Sprintf("Q%d: %s", n, q.Question), StyleListNumber, false)
		w.Paragraph("Answer: "+q.Answer.Label(), "", false)
	}

	if quiz.ValidationNotes != "" {
		w.PageBreak()
		if err := w.Heading("Validation Notes", 1); err != nil {
			return err
		}
		w.Paragraph(quiz.ValidationNotes, "", false)
	}

	if len(quiz.FactCheckingSources) > 0 {
		if quiz.ValidationNotes == "" {
			w.PageBreak()
		}
		if err := w.Heading("Fact-Checking Sources", 1); err != nil {
			return err
		}
		for _, source := range quiz.FactCheckingSources {
			w.Paragraph(source, StyleListBullet, false)
		}
	}
	return nil
}

// WordWriter renders into a .docx document.
type WordWriter struct {
	doc *docx.RootDoc
}

func NewWordWriter() (*WordWriter, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &WordWriter{doc: doc}, nil
}

func (w *WordWriter) Heading(text string, level uint) error {
	_, err := w.doc.AddHeading(text, level)
	return err
}

func (w *WordWriter) Paragraph(text, style string, bold bool) {
	var p *docx.Paragraph
	if bold {
		p = w.doc.AddParagraph("")
		p.AddText(text).Bold(true)
	} else {
		p = w.doc.AddParagraph(text)
	}
	if style != "" {
		p.Style(style)
	}
}

func (w *WordWriter) PageBreak() {
	w.doc.AddPageBreak()
}

func (w *WordWriter) Save(path string) error {
	return w.doc.SaveTo(path)
}

// WriteWord renders quiz into a new .docx file at path.
func WriteWord(path string, quiz *models.Quiz) error {
	w, err := NewWordWriter()
	if err != nil {
		return err
	}
	if err := RenderQuiz(w, quiz); err != nil {
		return err
	}
	return w.Save(path)
}

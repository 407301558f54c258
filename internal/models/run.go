package models

import (
	"time"

	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailure RunStatus = "failure"
)

// QuizRun records one execution of the quiz pipeline.
type QuizRun struct {
	ID            string         `json:"id" gorm:"primaryKey;size:36"` // UUID
	SessionID     string         `json:"session_id" gorm:"size:36;index"`
	URL           string         `json:"url" gorm:"not null;size:2048;index"`
	UseCache      bool           `json:"use_cache"`
	Status        RunStatus      `json:"status" gorm:"size:20;index"`
	MCQCount      int            `json:"mcq_count"`
	TFCount       int            `json:"tf_count"`
	QuestionCount int            `json:"question_count"`
	DurationMs    int64          `json:"duration_ms"`
	Quiz          datatypes.JSON `json:"quiz" gorm:"type:jsonb"`
	Error         string         `json:"error,omitempty" gorm:"type:text"`
	StartedAt     time.Time      `json:"started_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (QuizRun) TableName() string {
	return "quiz_runs"
}

// SearchResult is a single fact-checking snippet returned by web search.
type SearchResult struct {
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

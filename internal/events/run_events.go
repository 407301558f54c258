package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of run event being published
type EventType string

const (
	EventQuizGenerated EventType = "quiz.generated"
	EventQuizFailed    EventType = "quiz.failed"
	EventTripPlanned   EventType = "trip.planned"
)

const eventSource = "quiz-generator"

// RunEvent is the envelope for every event published by the pipelines
type RunEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
	// Key groups related events. Events with the same key keep their order.
	Key string `json:"key,omitempty"`
}

type QuizGeneratedEvent struct {
	RunID        string  `json:"run_id"`
	SessionID    string  `json:"session_id"`
	URL          string  `json:"url"`
	UseCache     bool    `json:"use_cache"`
	MCQCount     int     `json:"mcq_count"`
	TFCount      int     `json:"tf_count"`
	SourceCount  int     `json:"source_count"`
	DurationSecs float64 `json:"duration_seconds"`
	JSONPath     string  `json:"json_path"`
	DocumentPath string  `json:"document_path,omitempty"`
}

type QuizFailedEvent struct {
	RunID        string  `json:"run_id"`
	SessionID    string  `json:"session_id"`
	URL          string  `json:"url"`
	Error        string  `json:"error"`
	DurationSecs float64 `json:"duration_seconds"`
}

type TripPlannedEvent struct {
	PreferredRegion string `json:"preferred_region"`
	TripType        string `json:"trip_type"`
	OutputPath      string `json:"output_path"`
}

// Event factory functions

func NewQuizGeneratedEvent(data QuizGeneratedEvent) *RunEvent {
	return newRunEvent(EventQuizGenerated, data.URL, data)
}

func NewQuizFailedEvent(data QuizFailedEvent) *RunEvent {
	return newRunEvent(EventQuizFailed, data.URL, data)
}

func NewTripPlannedEvent(data TripPlannedEvent) *RunEvent {
	return newRunEvent(EventTripPlanned, data.PreferredRegion, data)
}

func newRunEvent(eventType EventType, key string, data interface{}) *RunEvent {
	return &RunEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
		Key:       key,
	}
}

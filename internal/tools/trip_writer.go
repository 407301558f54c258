package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/SAP-F-2025/quiz-generator/internal/storage"
)

const (
	tripPlanFile   = "trip_plan.txt"
	tripPlanBanner = "++++++++++ Final Travel Plan +++++++++++ \n\n"
)

// TripPlanWriter saves the final travel plan under Dir.
type TripPlanWriter struct {
	Dir   string
	store *storage.Store
	saved atomic.Bool
}

func NewTripPlanWriter(dir string, store *storage.Store) *TripPlanWriter {
	if dir == "" {
		dir = "outputs"
	}
	if store == nil {
		store = storage.New()
	}
	return &TripPlanWriter{Dir: dir, store: store}
}

// Path is where WriteTripPlan saves the plan.
func (w *TripPlanWriter) Path() string {
	return filepath.Join(w.Dir, tripPlanFile)
}

// WriteTripPlan writes the banner followed by the trimmed content.
func (w *TripPlanWriter) WriteTripPlan(ctx context.Context, content string) string {
	path := w.Path()
	body := tripPlanBanner + strings.TrimSpace(content) + "\n"
	if err := w.store.Write(ctx, path, []byte(body)); err != nil {
		return fmt.Sprintf("failed to save, exception %v", err)
	}
	w.saved.Store(true)
	return "saved to " + path
}

// Saved reports whether a plan has been written successfully.
func (w *TripPlanWriter) Saved() bool {
	return w.saved.Load()
}

// Tool exposes WriteTripPlan as file_writer_tool.
func (w *TripPlanWriter) Tool() Tool {
	return FunctionTool{
		Name:        "file_writer_tool",
		Description: "Writes the final combined travel plan (itinerary + budget) into trip_plan.txt",
		Parameters:  StringParams(map[string]string{"content": "The complete travel plan (itinerary + budget)"}),
		Fn: func(ctx context.Context, args Args) string {
			content, err := args.RequiredString("content")
			if err != nil {
				return "error: " + err.Error()
			}
			return w.WriteTripPlan(ctx, content)
		},
	}
}

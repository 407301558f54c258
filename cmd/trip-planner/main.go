// Command trip-planner runs the travel planner crew for a region and a trip
// type and saves the plan to outputs/trip_plan.txt.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/SAP-F-2025/quiz-generator/internal/config"
	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/services"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	req, ok := parseArgs(args, stdout)
	if !ok {
		return 1
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}
	logger := utils.NewLogger(cfg.Environment, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := llm.NewGeminiProvider(ctx, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.GeminiBaseURL, nil)
	if err != nil {
		logger.Error("Failed to create model provider", "error", err)
		return 1
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		return 1
	}
	defer publisher.Close()

	trips, err := services.NewTripService(provider, filepath.Join(cfg.OutputDir, "outputs"), publisher, nil, logger)
	if err != nil {
		logger.Error("Failed to load trip planner", "error", err)
		return 1
	}

	result, err := trips.Plan(ctx, req)
	if err != nil {
		logger.Error("Trip planning failed", "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "Trip plan saved to %s\n", result.OutputPath)
	return 0
}

func parseArgs(args []string, stdout io.Writer) (*models.TripRequest, bool) {
	if len(args) < 2 {
		fmt.Fprintln(stdout, "missing arguments")
		fmt.Fprintln(stdout, "usage: trip-planner <prefered_region> <trip_type>")
		fmt.Fprintln(stdout, "usage: <trip_type> : (budget, luxury, adventure, cultural)")
		fmt.Fprintln(stdout, "Example: trip-planner europe budget")
		return nil, false
	}
	return &models.TripRequest{
		PreferredRegion: args[0],
		TripType:        models.TripType(args[1]),
	}, true
}

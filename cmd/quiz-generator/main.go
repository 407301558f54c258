// Command quiz-generator turns a web page into a quiz. By default it prompts
// for a URL on the terminal; with -serve it exposes the pipeline over HTTP.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/SAP-F-2025/quiz-generator/internal/config"
	"github.com/SAP-F-2025/quiz-generator/internal/services"
	"github.com/SAP-F-2025/quiz-generator/internal/tracing"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

var version = "dev"

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of the terminal prompt")
	purgeCache := flag.Bool("purge-cache", false, "drop cached content briefs before running")
	flag.Parse()

	os.Exit(run(*serve, *purgeCache))
}

func run(serve, purgeCache bool) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}

	logger, err := utils.NewRunLogger(cfg.LogFile, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TraceFile != "" {
		if err := tracing.Init("quiz-generator", version, cfg.TraceFile); err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer func() {
				if err := tracing.Shutdown(context.Background()); err != nil {
					logger.Warn("Failed to flush traces", "error", err)
				}
			}()
		}
	}

	app, err := newApp(ctx, cfg, logger, serve)
	if err != nil {
		logger.Error("Failed to initialise quiz generator", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer app.Close()

	if purgeCache {
		if err := app.PurgeBriefs(ctx); err != nil {
			logger.Warn("Failed to purge brief cache", "error", err)
		}
	}

	if serve {
		if err := app.Serve(ctx, ":"+cfg.Port); err != nil {
			logger.Error("Server stopped", "error", err)
			return 1
		}
		return 0
	}

	req, err := promptRequest(os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("Failed to read input", "error", err)
		return 1
	}
	logger.Info("User input received", "url", req.URL, "use_cache", req.UseCache)

	result, err := app.Quiz.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidURL) {
			fmt.Println("Error:", err)
		}
		logger.Info("--- Quiz Generator Process Finished ---", "status", "failure")
		return 1
	}
	logger.Info("--- Quiz Generator Process Finished ---", "status", result.Status, "run_id", result.RunID)
	fmt.Printf("Quiz saved to %s and %s\n", result.JSONPath, result.DocumentPath)
	return 0
}

// promptRequest asks for the URL and the cache flag.
func promptRequest(in io.Reader, out io.Writer) (*services.GenerateQuizRequest, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Enter the URL for quiz generation: ")
	url, err := readLine(reader)
	if err != nil {
		return nil, err
	}

	fmt.Fprint(out, "Use cached content if available? (yes/no): ")
	answer, err := readLine(reader)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	answer = strings.ToLower(answer)

	return &services.GenerateQuizRequest{
		URL:      url,
		UseCache: answer == "yes" || answer == "y",
	}, nil
}

// readLine returns io.EOF only when the input ended before any text.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-generator/internal/storage"
)

// FileTools reads and writes local files on behalf of agents.
type FileTools struct {
	store *storage.Store
}

func NewFileTools(store *storage.Store) *FileTools {
	if store == nil {
		store = storage.New()
	}
	return &FileTools{store: store}
}

// ReadFileContent returns the file content or an error message.
func (f *FileTools) ReadFileContent(ctx context.Context, path string) string {
	data, err := f.store.Read(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("Error: File not found at '%s'.", path)
	}
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}
	return string(data)
}

// WriteFileContent overwrites path with content.
func (f *FileTools) WriteFileContent(ctx context.Context, path, content string) string {
	if err := f.store.Write(ctx, path, []byte(content)); err != nil {
		return fmt.Sprintf("Error writing to file: %v", err)
	}
	return fmt.Sprintf("Successfully wrote content to '%s'.", path)
}

// ReaderTool exposes ReadFileContent as file_reader.
func (f *FileTools) ReaderTool() Tool {
	return FunctionTool{
		Name:        "file_reader",
		Description: "Reads and returns the content of a local file if it exists. Otherwise, returns an error message.",
		Parameters:  StringParams(map[string]string{"file_path": "The path to the local file (e.g., 'content_brief.md')."}),
		Fn: func(ctx context.Context, args Args) string {
			path, err := args.RequiredString("file_path")
			if err != nil {
				return "error: " + err.Error()
			}
			return f.ReadFileContent(ctx, path)
		},
	}
}

// WriterTool exposes WriteFileContent as file_writer.
func (f *FileTools) WriterTool() Tool {
	return FunctionTool{
		Name:        "file_writer",
		Description: "Writes the given content to a local file, overwriting it if it exists.",
		Parameters: StringParams(map[string]string{
			"file_path": "The path to the local file (e.g., 'content_brief.md').",
			"content":   "The text content to write to the file.",
		}),
		Fn: func(ctx context.Context, args Args) string {
			path, err := args.RequiredString("file_path")
			if err != nil {
				return "error: " + err.Error()
			}
			content, _ := args["content"].(string)
			return f.WriteFileContent(ctx, path, content)
		},
	}
}

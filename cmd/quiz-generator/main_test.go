package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptRequest(t *testing.T) {
	tests := []struct {
		input    string
		url      string
		useCache bool
	}{
		{"https://go.dev\nyes\n", "https://go.dev", true},
		{"  https://go.dev  \nY\n", "https://go.dev", true},
		{"https://go.dev\nno\n", "https://go.dev", false},
		{"https://go.dev\nsure\n", "https://go.dev", false},
		{"https://go.dev\n", "https://go.dev", false},
		{"https://go.dev\ny", "https://go.dev", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		req, err := promptRequest(strings.NewReader(tt.input), &out)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.url, req.URL)
		assert.Equal(t, tt.useCache, req.UseCache, tt.input)
		assert.Equal(t, "Enter the URL for quiz generation: Use cached content if available? (yes/no): ", out.String())
	}
}

func TestPromptRequest_NoInput(t *testing.T) {
	_, err := promptRequest(strings.NewReader(""), io.Discard)
	assert.ErrorIs(t, err, io.EOF)
}

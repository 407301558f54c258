package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Roles used in conversation contents.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Provider generates a single model turn.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request is one generateContent call.
type Request struct {
	SystemInstruction string
	Contents          []Content
	Tools             []FunctionDeclaration
	Temperature       *float64
	// JSONOutput asks the model for an application/json response body.
	JSONOutput bool
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part holds exactly one of Text, FunctionCall or FunctionResponse.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

type FunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

// FunctionDeclaration describes a tool the model may call. Parameters is a
// JSON schema object.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokenCount"`
	CandidatesTokens int `json:"candidatesTokenCount"`
	TotalTokens      int `json:"totalTokenCount"`
}

// Response is the first candidate of a model turn.
type Response struct {
	Content      Content
	FinishReason string
	Usage        Usage
}

// Text concatenates the text parts of the response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// FunctionCalls returns the function calls requested by the model, in order.
func (r *Response) FunctionCalls() []FunctionCall {
	if r == nil {
		return nil
	}
	var calls []FunctionCall
	for _, part := range r.Content.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, *part.FunctionCall)
		}
	}
	return calls
}

// UserText builds a user content holding a single text part.
func UserText(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// Float64 returns a pointer to v, for Request.Temperature.
func Float64(v float64) *float64 {
	return &v
}

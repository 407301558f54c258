package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
)

// ErrNoCandidates is returned when the API answers without any candidate.
var ErrNoCandidates = errors.New("gemini returned no candidates")

// GeminiProvider implements Provider on top of the Gemini API client.
type GeminiProvider struct {
	BaseURL string
	Model   string
	client  *genai.Client
}

// NewGeminiProvider constructs a Gemini provider with explicit settings. A
// nil httpClient uses the SDK default.
func NewGeminiProvider(ctx context.Context, model, apiKey, baseURL string, httpClient *http.Client) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{BaseURL: baseURL, Model: model, client: client}, nil
}

// Generate sends one generateContent request and returns the first candidate.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config, err := buildGenerateConfig(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.Model, toGenaiContents(req.Contents), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: blocked (%s)", ErrNoCandidates, resp.PromptFeedback.BlockReason)
		}
		return nil, ErrNoCandidates
	}

	candidate := resp.Candidates[0]
	out := &Response{
		Content:      fromGenaiContent(candidate.Content),
		FinishReason: string(candidate.FinishReason),
	}
	if out.Content.Role == "" {
		out.Content.Role = RoleModel
	}
	if usage := resp.UsageMetadata; usage != nil {
		out.Usage = Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CandidatesTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	return out, nil
}

func buildGenerateConfig(req Request) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	// Gemini rejects a JSON response mime type together with function calling.
	if req.JSONOutput && len(req.Tools) == 0 {
		config.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decl := &genai.FunctionDeclaration{Name: tool.Name, Description: tool.Description}
			if len(tool.Parameters) > 0 {
				var schema map[string]interface{}
				if err := json.Unmarshal(tool.Parameters, &schema); err != nil {
					return nil, fmt.Errorf("tool %s: invalid parameters schema: %w", tool.Name, err)
				}
				decl.ParametersJsonSchema = schema
			}
			decls = append(decls, decl)
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return config, nil
}

func toGenaiContents(contents []Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, part := range c.Parts {
			switch {
			case part.FunctionCall != nil:
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				}})
			case part.FunctionResponse != nil:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					Name:     part.FunctionResponse.Name,
					Response: part.FunctionResponse.Response,
				}})
			default:
				parts = append(parts, &genai.Part{Text: part.Text})
			}
		}
		out = append(out, &genai.Content{Role: c.Role, Parts: parts})
	}
	return out
}

func fromGenaiContent(c *genai.Content) Content {
	if c == nil {
		return Content{}
	}
	out := Content{Role: c.Role, Parts: make([]Part, 0, len(c.Parts))}
	for _, part := range c.Parts {
		if part == nil {
			continue
		}
		switch {
		case part.FunctionCall != nil:
			out.Parts = append(out.Parts, Part{FunctionCall: &FunctionCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			}})
		case part.FunctionResponse != nil:
			out.Parts = append(out.Parts, Part{FunctionResponse: &FunctionResponse{
				Name:     part.FunctionResponse.Name,
				Response: part.FunctionResponse.Response,
			}})
		case part.Thought:
			// thought summaries are not part of the answer
		default:
			out.Parts = append(out.Parts, Part{Text: part.Text})
		}
	}
	return out
}

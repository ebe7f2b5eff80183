package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/dvloznov/expense-bot/internal/extraction"
)

// DefaultTemperature keeps extraction close to deterministic.
const DefaultTemperature float32 = 0.2

// Config holds the Gemini connection settings.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint; empty uses the SDK default.
	BaseURL string
	// HTTPClient overrides the transport; nil uses the SDK default.
	HTTPClient *http.Client
}

// Provider is the extraction.Provider backed by the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider creates a Gemini provider. The genai client is built once and
// shared by all requests.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create genai client: %w", err)
	}

	return &Provider{client: client, model: cfg.Model}, nil
}

// Generate implements extraction.Provider.
func (p *Provider) Generate(ctx context.Context, req extraction.Request) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ResponseSchema(req.Schema),
		Temperature:       genai.Ptr(DefaultTemperature),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Text, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &extraction.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	return resp.Text(), nil
}

// ResponseSchema converts the extraction schema into Gemini's structured-output schema.
func ResponseSchema(s extraction.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	order := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = &genai.Schema{
			Type:        schemaType(f.Type),
			Description: f.Description,
		}
		order = append(order, f.Name)
	}

	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		PropertyOrdering: order,
		Required:         s.Required(),
	}
}

func schemaType(t extraction.FieldType) genai.Type {
	switch t {
	case extraction.FieldNumber:
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}

var _ extraction.Provider = (*Provider)(nil)

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Client wraps the Gemini API for the two AI features: image diagnosis
// and the PhytoBot assistant.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client. The API key is required; model
// falls back to a current flash model when empty.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Diagnosis is the structured verdict the vision prompt asks the model
// to return. Confidence is clamped to [0,1]; nil means the model gave
// no usable number.
type Diagnosis struct {
	Type           string    `json:"type"` // Plaga | Enfermedad | Saludable | Indeterminado
	Name           string    `json:"name"`
	Confidence     *float64  `json:"confidence"`
	Stage          string    `json:"stage"`
	Recommendation string    `json:"recommendation"`
	Treatment      Treatment `json:"treatment"`
}

type Treatment struct {
	Natural  []string `json:"natural"`
	Chemical []string `json:"chemical"`
}

const diagnosisPrompt = `Eres un fitopatólogo experto en frijol. Devuelve SOLO JSON:
{
  "type": "Plaga" | "Enfermedad" | "Saludable" | "Indeterminado",
  "name": "string",
  "confidence": 0..1,
  "stage": "string",
  "recommendation": "string",
  "treatment": { "natural": [string], "chemical": [string] }
}
Sin texto adicional.`

// DiagnoseImage sends the photo to the vision model and parses its JSON
// verdict. Missing or malformed fields degrade to safe defaults rather
// than failing the request.
func (c *Client) DiagnoseImage(ctx context.Context, image []byte, mimeType string) (*Diagnosis, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(diagnosisPrompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini diagnosis failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())

	var d Diagnosis
	raw, ok := extractJSON(text)
	if !ok || json.Unmarshal([]byte(raw), &d) != nil {
		// The model answered in prose. Keep the text as the
		// recommendation instead of failing the request.
		zero := 0.0
		d = Diagnosis{
			Type:           "Indeterminado",
			Name:           "Sin parsear",
			Confidence:     &zero,
			Recommendation: text,
		}
	}

	if d.Type == "" {
		d.Type = "Indeterminado"
	}
	if d.Name == "" {
		d.Name = "Desconocido"
	}
	if d.Stage == "" {
		d.Stage = "N/A"
	}
	if d.Recommendation == "" {
		d.Recommendation = "—"
	}
	if d.Confidence != nil {
		clamped := clamp01(*d.Confidence)
		d.Confidence = &clamped
	}
	if d.Treatment.Natural == nil {
		d.Treatment.Natural = []string{}
	}
	if d.Treatment.Chemical == nil {
		d.Treatment.Chemical = []string{}
	}

	return &d, nil
}

const assistantPreamble = `Eres PhytoBot, un asistente agrícola experto en frijol.
Responde en español con consejos claros, prácticos y breves.
Pregunta del usuario: `

// Ask answers one assistant question with the PhytoBot persona.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(assistantPreamble+question, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini ask failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return text, nil
}

// extractJSON pulls the first JSON object out of a model reply that may
// wrap it in markdown fences or surrounding prose.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/siamcode/standupstrip-backend/pkg/config"
)

// ErrUnavailable signals that the generation backend could not produce text:
// missing configuration, transport failure, non-2xx status or an empty
// response. Callers treat every unavailable error the same way and fall back
// to the template summary.
var ErrUnavailable = errors.New("text generation unavailable")

// Generation parameters are fixed; they are part of the product contract,
// not user-tunable knobs.
const (
	generationTemperature     = 0.7
	generationTopK            = 40
	generationTopP            = 0.95
	generationMaxOutputTokens = 2048
)

// Client calls the Gemini generateContent endpoint.
type Client struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
}

// NewClient builds a Gemini client with the configured timeout.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the first candidate's text. Any
// failure is wrapped in ErrUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.cfg.Configured() {
		return "", fmt.Errorf("%w: api key not set", ErrUnavailable)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     generationTemperature,
			TopK:            generationTopK,
			TopP:            generationTopP,
			MaxOutputTokens: generationMaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.APIURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, snippet)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	text := extractText(parsed)
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate text", ErrUnavailable)
	}
	return text, nil
}

func extractText(resp generateResponse) string {
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

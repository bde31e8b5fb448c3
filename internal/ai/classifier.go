package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/misd-it/misdesk/internal/config"
)

// Classifier obtains a priority suggestion for a ticket description.
type Classifier interface {
	Classify(ctx context.Context, description string) (string, error)
}

// GeminiClassifier calls the generateContent endpoint of the
// generative-language API.
type GeminiClassifier struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiClassifier builds a classifier. Returns nil when no API key is
// configured; the ticket engine falls back to the default priority.
func NewGeminiClassifier(cfg config.AIConfig) *GeminiClassifier {
	if cfg.APIKey == "" {
		return nil
	}
	return &GeminiClassifier{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: cfg.EndpointURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
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

// PriorityPrompt embeds the description and the rubric used to pick a
// priority label. The response is stored verbatim after trimming.
func PriorityPrompt(description string) string {
	return "You are a helpdesk triage assistant. Classify the priority of the following " +
		"support ticket description as exactly one word: High, Moderate, or Low.\n" +
		"High: outages, security issues, or anything blocking many users or marked urgent.\n" +
		"Moderate: a single user blocked, degraded functionality, time-sensitive requests.\n" +
		"Low: questions, cosmetic issues, routine requests.\n\n" +
		"Description: " + description + "\n\nAnswer with one word only."
}

// Classify sends the rubric prompt and returns the trimmed response text.
func (g *GeminiClassifier) Classify(ctx context.Context, description string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: PriorityPrompt(description)}}}},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: generateContent returned %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("ai: empty response")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

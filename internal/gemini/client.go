// Package gemini adapts a Gemini-style generateContent REST endpoint for
// contract analysis and scoped follow-up chat.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

// Analyzer is the narrow interface the HTTP layer consumes. Tests inject a
// stub that returns canned responses.
type Analyzer interface {
	Analyze(ctx context.Context, contractText, typeHint string) (*contract.AnalysisResponse, error)
	Chat(ctx context.Context, req contract.ChatRequest) (string, error)
}

// Client calls the generativelanguage models/{model}:generateContent API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents          []generateContent `json:"contents"`
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      generateContent `json:"content"`
		FinishReason string          `json:"finishReason"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	body, _ := json.Marshal(req)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini error: %s: %s", resp.Status, string(b))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned empty response")
	}
	text := result.Candidates[0].Content.Parts[0].Text

	// "MAX_TOKENS" means the response was truncated
	log.Printf("[gemini] finishReason=%s textLen=%d", result.Candidates[0].FinishReason, len(text))

	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}

// stripFences removes a surrounding markdown code fence the model sometimes
// wraps JSON output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[7:]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// rawAnalysis mirrors contract.AnalysisResponse with pointers for the
// required nested objects so their absence is detectable, and a raw
// debate_transcript so a non-array value can be dropped instead of failing
// the whole parse.
type rawAnalysis struct {
	AgreementType        string                        `json:"agreement_type"`
	ExtractedClauses     *contract.ExtractedClauses    `json:"extracted_clauses"`
	DefenderAnalysis     string                        `json:"defender_analysis"`
	ProtectorAnalysis    string                        `json:"protector_analysis"`
	NarrativeSimulation  *contract.NarrativeSimulation `json:"narrative_simulation"`
	DetectedRisks        []string                      `json:"detected_risks"`
	PlainLanguageSummary string                        `json:"plain_language_summary"`
	DebateTranscript     json.RawMessage               `json:"debate_transcript"`
}

// Analyze runs the five-role contract analysis and parses the model's JSON
// reply into the shared data model.
func (c *Client) Analyze(ctx context.Context, contractText, typeHint string) (*contract.AnalysisResponse, error) {
	text, err := c.generate(ctx, generateRequest{
		Contents: []generateContent{{
			Role:  "user",
			Parts: []generatePart{{Text: BuildContractPrompt(contractText, typeHint)}},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.2,
			MaxOutputTokens:  8192,
		},
	})
	if err != nil {
		return nil, err
	}

	return parseAnalysis(text)
}

func parseAnalysis(text string) (*contract.AnalysisResponse, error) {
	clean := stripFences(text)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		snippet := clean
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("gemini response is not valid JSON: %s", snippet)
	}

	if raw.AgreementType == "" || raw.ExtractedClauses == nil || raw.NarrativeSimulation == nil {
		return nil, fmt.Errorf("gemini response missing required fields")
	}

	// A malformed debate_transcript is dropped, not fatal.
	var turns []contract.DebateTurn
	if len(raw.DebateTranscript) > 0 {
		if err := json.Unmarshal(raw.DebateTranscript, &turns); err != nil {
			turns = nil
		}
	}
	log.Printf("[gemini] debate_transcript present=%t turns=%d", turns != nil, len(turns))

	return &contract.AnalysisResponse{
		AgreementType:        raw.AgreementType,
		ExtractedClauses:     *raw.ExtractedClauses,
		DefenderAnalysis:     raw.DefenderAnalysis,
		ProtectorAnalysis:    raw.ProtectorAnalysis,
		NarrativeSimulation:  *raw.NarrativeSimulation,
		DetectedRisks:        raw.DetectedRisks,
		PlainLanguageSummary: raw.PlainLanguageSummary,
		DebateTranscript:     turns,
	}, nil
}

// Chat answers one follow-up question scoped to a completed analysis. The
// conversation history is capped at the last 10 messages to stay within
// token limits.
func (c *Client) Chat(ctx context.Context, req contract.ChatRequest) (string, error) {
	history := req.ConversationHistory
	if len(history) > 10 {
		history = history[len(history)-10:]
	}

	contents := make([]generateContent, 0, len(history)+1)
	for _, msg := range history {
		role := "model"
		if msg.Role == "user" {
			role = "user"
		}
		contents = append(contents, generateContent{
			Role:  role,
			Parts: []generatePart{{Text: msg.Content}},
		})
	}
	contents = append(contents, generateContent{
		Role:  "user",
		Parts: []generatePart{{Text: req.UserMessage}},
	})

	text, err := c.generate(ctx, generateRequest{
		Contents: contents,
		SystemInstruction: &generateContent{
			Parts: []generatePart{{Text: BuildChatSystemPrompt(req.AgreementContext)}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 1024,
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

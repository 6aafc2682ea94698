// Package tts adapts an external text-to-speech service behind a narrow
// Synthesizer interface so the audio pipeline never depends on a concrete
// cloud client.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/wav"
)

// Voice identities for the two debate speakers.
const (
	VoiceDefender  = "en-US-Neural2-D" // authoritative
	VoiceProtector = "en-US-Neural2-F" // empathetic
)

// VoiceFor maps a debate speaker to its fixed voice identity.
func VoiceFor(speaker string) string {
	if speaker == contract.SpeakerDefender {
		return VoiceDefender
	}
	return VoiceProtector
}

// Synthesizer produces WAV-encoded LINEAR16 audio for a single utterance.
// Implementations must be safe for concurrent use; the pipeline calls
// Synthesize once per debate turn with no ordering between calls.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Client talks to a Google-style text:synthesize REST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string `json:"audioEncoding"`
		SampleRateHertz int    `json:"sampleRateHertz"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"` // base64
}

// Synthesize renders one utterance as mono 16-bit LINEAR16 at 24 kHz and
// returns the WAV-encoded bytes. Any transport or service failure is an
// error; there is no partial synthesis.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	var req synthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = "en-US"
	req.Voice.Name = voice
	req.AudioConfig.AudioEncoding = "LINEAR16"
	req.AudioConfig.SampleRateHertz = wav.SampleRate

	body, _ := json.Marshal(req)
	url := c.baseURL + "/v1/text:synthesize"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts error: %s: %s", resp.Status, string(b))
	}

	var result synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("tts decode: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("tts audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned empty audio")
	}
	return audio, nil
}

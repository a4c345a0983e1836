// Package speech provides the speech-synthesis collaborator interface. TTS
// is a best-effort side channel: a synthesis failure never aborts a chat
// turn, it only costs the audio reference.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultVoice is the voice used when the caller does not select one.
const DefaultVoice = "Algenib"

// Synthesizer converts response text into a durable, fetchable audio
// reference. Implementations return ("", error) on failure; callers log and
// continue with no audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (string, error)
}

// Disabled is a Synthesizer for deployments without a TTS backend. It
// reports failure for every call so callers follow their no-audio path.
type Disabled struct{}

// Synthesize implements Synthesizer.
func (Disabled) Synthesize(ctx context.Context, text, voice string) (string, error) {
	return "", fmt.Errorf("speech synthesis is not configured")
}

// HTTPClient calls an external TTS service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// HTTPConfig holds TTS client configuration.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration // default: 5s
}

// NewHTTPClient creates a TTS client for the given service URL.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type synthesizeResponse struct {
	AudioURL string `json:"audio_url"`
}

// Synthesize posts the text to the TTS service and returns the audio
// reference it minted.
func (c *HTTPClient) Synthesize(ctx context.Context, text, voice string) (string, error) {
	if voice == "" {
		voice = DefaultVoice
	}

	jsonData, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/synthesize", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("tts returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", fmt.Errorf("failed to decode tts response: %w", err)
	}
	if respData.AudioURL == "" {
		return "", fmt.Errorf("tts returned empty audio reference")
	}

	return respData.AudioURL, nil
}

var (
	_ Synthesizer = Disabled{}
	_ Synthesizer = (*HTTPClient)(nil)
)

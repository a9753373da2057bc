package replicate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"iheadshot-backend/internal/providers"
)

// Client talks to the Replicate predictions API. It backs two collaborators:
// the fallback generation provider (a stateless identity-preserving model
// that needs no training step) and the synchronous upscaler.
type Client struct {
	baseURL       string
	apiToken      string
	fallbackModel string
	upscaleModel  string
	httpClient    *http.Client
}

type predictionRequest struct {
	Version string         `json:"version"`
	Input   map[string]any `json:"input"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error,omitempty"`
}

func NewClient(baseURL, apiToken, fallbackModel, upscaleModel string) *Client {
	return &Client{
		baseURL:       baseURL,
		apiToken:      apiToken,
		fallbackModel: fallbackModel,
		upscaleModel:  upscaleModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// createPrediction runs a model synchronously (Prefer: wait) and returns the
// finished prediction.
func (c *Client) createPrediction(version string, input map[string]any) (*prediction, error) {
	reqBody := predictionRequest{
		Version: version,
		Input:   input,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/predictions"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("failed to create prediction: status %d, body: %s", resp.StatusCode, string(body))
	}

	var pred prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if pred.Status == "failed" || pred.Status == "canceled" {
		return nil, fmt.Errorf("prediction %s: %s", pred.Status, pred.Error)
	}

	return &pred, nil
}

// outputURLs normalizes a prediction output, which is a single URL string
// for some models and a URL array for others.
func outputURLs(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("prediction output is empty")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		// A succeeded prediction can still deliver zero URLs; callers index
		// into the result, so reject that here.
		if len(many) == 0 {
			return nil, fmt.Errorf("prediction output is empty")
		}
		return many, nil
	}

	return nil, fmt.Errorf("unexpected prediction output: %s", string(raw))
}

// SubmitGeneration implements providers.GenerationProvider with a stateless
// identity-preserving model: no trained tune required, just the reference
// face. Results come back inline.
func (c *Client) SubmitGeneration(req providers.GenerationRequest) (*providers.GenerationResult, error) {
	if req.FaceImageURL == "" {
		return nil, fmt.Errorf("fallback generation requires a reference face image")
	}

	pred, err := c.createPrediction(c.fallbackModel, map[string]any{
		"prompt":      req.Prompt,
		"image":       req.FaceImageURL,
		"num_outputs": req.Count,
	})
	if err != nil {
		return nil, err
	}

	urls, err := outputURLs(pred.Output)
	if err != nil {
		return nil, err
	}

	return &providers.GenerationResult{ImageURLs: urls}, nil
}

func (c *Client) Name() string {
	return "replicate"
}

// Upscale implements providers.Upscaler: run the upscale model, download the
// enhanced image, and report its decoded dimensions.
func (c *Client) Upscale(imageURL string, scale int) ([]byte, int, int, error) {
	pred, err := c.createPrediction(c.upscaleModel, map[string]any{
		"image":        imageURL,
		"scale":        scale,
		"face_enhance": true,
	})
	if err != nil {
		return nil, 0, 0, err
	}

	urls, err := outputURLs(pred.Output)
	if err != nil {
		return nil, 0, 0, err
	}

	data, err := c.DownloadFile(urls[0])
	if err != nil {
		return nil, 0, 0, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Dimensions are informational; the enhanced bytes are still good.
		return data, 0, 0, nil
	}

	return data, cfg.Width, cfg.Height, nil
}

func (c *Client) DownloadFile(downloadURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

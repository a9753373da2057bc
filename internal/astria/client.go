package astria

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"iheadshot-backend/internal/providers"
)

// Client talks to the Astria fine-tuning API: a tune trains an identity
// model from reference selfies, prompts generate images against a trained
// tune. Both report completion via webhook callbacks.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Tune struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	TrainedAt time.Time `json:"trained_at,omitempty"`
}

type Prompt struct {
	ID     int64    `json:"id"`
	TuneID int64    `json:"tune_id"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

type createTuneRequest struct {
	Tune tunePayload `json:"tune"`
}

type tunePayload struct {
	Title     string   `json:"title"`
	Name      string   `json:"name"`
	ImageURLs []string `json:"image_urls"`
	Callback  string   `json:"callback,omitempty"`
}

type createPromptRequest struct {
	Prompt promptPayload `json:"prompt"`
}

type promptPayload struct {
	Text      string `json:"text"`
	NumImages int    `json:"num_images"`
	Title     string `json:"title,omitempty"`
	Callback  string `json:"callback,omitempty"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateTune submits a training job. The callback URL receives the tune
// payload once training finishes or fails.
func (c *Client) CreateTune(title, subject string, imageURLs []string, callbackURL string) (*Tune, error) {
	reqBody := createTuneRequest{
		Tune: tunePayload{
			Title:     title,
			Name:      subject,
			ImageURLs: imageURLs,
			Callback:  callbackURL,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/tunes"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
		return nil, fmt.Errorf("failed to create tune: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tune Tune
	if err := json.Unmarshal(body, &tune); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if tune.ID == 0 {
		return nil, fmt.Errorf("tune id missing in response, body: %s", string(body))
	}

	return &tune, nil
}

// CreatePrompt submits a generation batch against a trained tune. Result
// images arrive on the callback URL.
func (c *Client) CreatePrompt(tuneID int64, title, text string, numImages int, callbackURL string) (*Prompt, error) {
	reqBody := createPromptRequest{
		Prompt: promptPayload{
			Text:      text,
			NumImages: numImages,
			Title:     title,
			Callback:  callbackURL,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/tunes/" + strconv.FormatInt(tuneID, 10) + "/prompts"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
		return nil, fmt.Errorf("failed to create prompt: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prompt Prompt
	if err := json.Unmarshal(body, &prompt); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return &prompt, nil
}

// SubmitTraining implements providers.TrainingProvider.
func (c *Client) SubmitTraining(req providers.TrainingRequest) (string, error) {
	subject := req.Subject
	if subject == "" {
		subject = "person"
	}

	var tune *Tune
	err := c.RetryWithBackoff(func() error {
		var err error
		tune, err = c.CreateTune(req.OrderID.String(), subject, req.ImageURLs, req.CallbackURL)
		return err
	}, 3)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(tune.ID, 10), nil
}

// SubmitGeneration implements providers.GenerationProvider. The request's
// Reference rides in the prompt title so the callback payload carries the
// order correlation id. Results are asynchronous, so the returned result is
// always nil.
func (c *Client) SubmitGeneration(req providers.GenerationRequest) (*providers.GenerationResult, error) {
	tuneID, err := strconv.ParseInt(req.ModelVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tune id %q: %w", req.ModelVersion, err)
	}

	err = c.RetryWithBackoff(func() error {
		_, err := c.CreatePrompt(tuneID, req.Reference, req.Prompt, req.Count, req.CallbackURL)
		return err
	}, 3)
	if err != nil {
		return nil, err
	}

	return nil, nil
}

func (c *Client) Name() string {
	return "astria"
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

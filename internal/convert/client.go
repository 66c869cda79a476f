// Package convert is a client for the job-based document conversion
// service: submit a file, poll the job, download one image per page.
package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Job lifecycle states reported by the conversion service
const (
	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusFinished   = "finished"
	StatusError      = "error"
)

var (
	// ErrPollBudgetExhausted is returned when the job did not finish
	// within the retry policy's poll budget
	ErrPollBudgetExhausted = errors.New("conversion job did not finish within poll budget")

	// ErrJobFailed is returned when the service reports an explicit failure
	ErrJobFailed = errors.New("conversion job failed")
)

// RetryPolicy bounds the poll loop. Tests inject a fast policy.
type RetryPolicy struct {
	PollInterval time.Duration
	MaxPolls     int
}

// DefaultRetryPolicy allows roughly two minutes of conversion time
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		PollInterval: 3 * time.Second,
		MaxPolls:     40,
	}
}

// Client talks to the conversion service
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	policy     RetryPolicy
}

// NewClient creates a conversion client
func NewClient(baseURL, apiKey string, policy RetryPolicy) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		policy:     policy,
	}
}

type submitRequest struct {
	File         string `json:"file"` // base64
	MIMEType     string `json:"mime_type"`
	OutputFormat string `json:"output_format"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type jobResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Pages   []struct {
		URL string `json:"url"`
	} `json:"pages,omitempty"`
}

// Convert submits the file, polls until the job finishes and downloads
// the page images in source page order.
func (c *Client) Convert(ctx context.Context, data []byte, mimeType string) ([][]byte, error) {
	jobID, err := c.submitJob(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	job, err := c.awaitJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	pages := make([][]byte, 0, len(job.Pages))
	for i, page := range job.Pages {
		img, err := c.fetchPage(ctx, page.URL)
		if err != nil {
			return nil, fmt.Errorf("download page %d of job %s: %w", i+1, jobID, err)
		}
		pages = append(pages, img)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("job %s finished with no pages: %w", jobID, ErrJobFailed)
	}
	return pages, nil
}

func (c *Client) submitJob(ctx context.Context, data []byte, mimeType string) (string, error) {
	body, err := json.Marshal(submitRequest{
		File:         base64.StdEncoding.EncodeToString(data),
		MIMEType:     mimeType,
		OutputFormat: "png",
	})
	if err != nil {
		return "", fmt.Errorf("marshal conversion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit conversion job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("submit conversion job: unexpected status %d", resp.StatusCode)
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if submitted.ID == "" {
		return "", fmt.Errorf("submit response missing job id")
	}
	return submitted.ID, nil
}

// awaitJob polls until the job reaches a terminal state or the poll
// budget runs out. The sleep between polls is context-aware so callers
// can abort long conversions.
func (c *Client) awaitJob(ctx context.Context, jobID string) (*jobResponse, error) {
	for attempt := 0; attempt < c.policy.MaxPolls; attempt++ {
		job, err := c.pollJob(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case StatusFinished:
			return job, nil
		case StatusError:
			if job.Message != "" {
				return nil, fmt.Errorf("%w: %s", ErrJobFailed, job.Message)
			}
			return nil, ErrJobFailed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.policy.PollInterval):
		}
	}
	return nil, ErrPollBudgetExhausted
}

func (c *Client) pollJob(ctx context.Context, jobID string) (*jobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll job %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll job %s: unexpected status %d", jobID, resp.StatusCode)
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

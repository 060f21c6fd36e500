// Package remote provides an OCR adapter backed by an HTTP recognition
// service. The service accepts an uploaded file and returns recognised
// plain text; it rasterises PDFs itself.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.OCRService = (*Client)(nil)

// DefaultTimeout bounds a recognition request. OCR can be slow on large
// scans.
const DefaultTimeout = 5 * time.Minute

// Config holds configuration for the OCR client.
type Config struct {
	// BaseURL is the OCR service address (required).
	BaseURL string

	// Timeout is the per-request timeout (default: 5m).
	Timeout time.Duration
}

// Client talks to the remote OCR service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// recognizeResponse is the OCR service response format.
type recognizeResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// healthResponse is the health endpoint response format.
type healthResponse struct {
	Status string `json:"status"`
}

// New creates a new OCR client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: OCR base URL is required", domain.ErrInvalidInput)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
	}, nil
}

// Recognize uploads the file bytes and returns the recognised text.
func (c *Client) Recognize(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", "document")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fileWriter.Write(image); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logger.Debug("OCR request: %d bytes", len(image))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrOCRUnavailable, resp.StatusCode, string(body))
	}

	var recognized recognizeResponse
	if err := json.Unmarshal(body, &recognized); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !recognized.Success {
		return "", fmt.Errorf("%w: %s", domain.ErrOCRUnavailable, recognized.Error)
	}

	return recognized.Text, nil
}

// Ping checks the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrOCRUnavailable, resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("%w: status %q", domain.ErrOCRUnavailable, health.Status)
	}

	return nil
}

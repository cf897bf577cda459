package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sovdash/internal/models"
	"sovdash/internal/report"
)

// Errors surfaced by the client and session.
var (
	ErrNoKeywords = errors.New("no keywords entered")
	ErrTimeout    = errors.New("request timed out")
	ErrBusy       = errors.New("request already in progress")
	ErrNoData     = report.ErrNoData
	ErrSuperseded = errors.New("response superseded by a newer request")
)

// APIError is a non-2xx response from the dashboard API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the dashboard HTTP API. Analysis calls and all other calls
// have separate time limits.
type Client struct {
	baseURL         string
	http            *http.Client
	requestTimeout  time.Duration
	analysisTimeout time.Duration
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, requestTimeout, analysisTimeout time.Duration) *Client {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	if analysisTimeout <= 0 {
		analysisTimeout = 5 * time.Minute
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{},
		requestTimeout:  requestTimeout,
		analysisTimeout: analysisTimeout,
	}
}

// Demo fetches the sample analysis.
func (c *Client) Demo(ctx context.Context) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := c.do(ctx, http.MethodGet, "/api/demo", c.requestTimeout, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UserSearch runs an analysis of the given keywords.
func (c *Client) UserSearch(ctx context.Context, req models.UserSearchRequest) (*models.UserSearchResponse, error) {
	var resp models.UserSearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/user-search", c.analysisTimeout, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("user search: %w", ErrNoData)
	}
	return &resp, nil
}

// GenerateReport asks the server to render result in format.
func (c *Client) GenerateReport(ctx context.Context, result *models.AnalysisResult, format report.Format) (*models.GenerateReportResponse, error) {
	var resp models.GenerateReportResponse
	req := models.GenerateReportRequest{AnalysisData: result, Format: string(format)}
	if err := c.do(ctx, http.MethodPost, "/api/generate-report", c.requestTimeout, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Config fetches the server's default brands and keywords.
func (c *Client) Config(ctx context.Context) (*models.ConfigResponse, error) {
	var resp models.ConfigResponse
	if err := c.do(ctx, http.MethodGet, "/api/config", c.requestTimeout, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches server readiness.
func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", c.requestTimeout, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError reads either the {"error": ...} envelope or the user-search
// {"message": ...} body.
func decodeAPIError(status int, data []byte) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &APIError{StatusCode: status}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

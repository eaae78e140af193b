// API client for this application's own proxy endpoints
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

// APIService calls the proxy endpoints with the stored credentials attached.
type APIService struct {
	baseURL    string
	creds      models.Credentials
	httpClient *http.Client
}

// NewAPIService creates a proxy client for baseURL.
func NewAPIService(baseURL string, creds models.Credentials, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

// Sessions fetches the active playback view models.
func (a *APIService) Sessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := a.getJSON(ctx, "/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Stats fetches library counts.
func (a *APIService) Stats(ctx context.Context) (*models.LibraryStats, error) {
	var stats models.LibraryStats
	if err := a.getJSON(ctx, "/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Resources fetches transcode, stream, and bandwidth usage.
func (a *APIService) Resources(ctx context.Context) (*models.ResourceUsage, error) {
	var usage models.ResourceUsage
	if err := a.getJSON(ctx, "/resources", &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// Thumbnail fetches image bytes through the thumbnail relay.
func (a *APIService) Thumbnail(ctx context.Context, path string) (*Image, error) {
	params := url.Values{}
	params.Set("path", path)
	params.Set("token", a.creds.Token)
	params.Set("serverAddress", a.creds.ServerAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/thumbnail?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError("Failed to fetch thumbnail", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return nil, proxyError("Failed to fetch thumbnail", resp.StatusCode, body)
	}
	return readImage("Failed to fetch thumbnail", resp)
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := a.newRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func (a *APIService) getJSON(ctx context.Context, path string, v any) error {
	op := "GET " + path

	resp, err := a.Get(ctx, path)
	if err != nil {
		return shared.TransportError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return proxyError(op, resp.StatusCode, resp.Body)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &shared.UpstreamError{Operation: op, Status: resp.StatusCode, Details: fmt.Sprintf("failed to decode response: %v", err)}
	}
	return nil
}

func (a *APIService) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerToken, a.creds.Token)
	req.Header.Set(headerServerURL, a.creds.ServerAddress)
	return req, nil
}

// proxyError turns an {error, details} body into an [shared.UpstreamError].
func proxyError(op string, status int, body []byte) error {
	var decoded errorBody
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return &shared.UpstreamError{Operation: decoded.Error, Status: status, Details: decoded.Details}
	}
	return shared.NewUpstreamError(op, status, body)
}

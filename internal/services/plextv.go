package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultProviderURL is the plex.tv v2 API base.
const DefaultProviderURL = "https://plex.tv/api/v2"

// TokenType marks tokens issued through PIN pairing.
const TokenType = "X-Plex-Token"

type pinResponse struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	AuthToken *string `json:"authToken"`
}

// PlexTVService talks to the plex.tv account API: PIN issuance, PIN status, and resource discovery.
type PlexTVService struct {
	baseURL    string
	product    string
	version    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewPlexTVService creates a plex.tv client identifying itself as product/version.
func NewPlexTVService(baseURL, product, version string, client *http.Client, logger *log.Logger) *PlexTVService {
	if baseURL == "" {
		baseURL = DefaultProviderURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &PlexTVService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		product:    product,
		version:    version,
		httpClient: client,
		logger:     logger,
	}
}

// RequestPin asks plex.tv for a new strong PIN bound to clientID.
func (s *PlexTVService) RequestPin(ctx context.Context, clientID string) (*models.Pin, error) {
	const op = "Failed to request PIN"

	req, err := s.newRequest(ctx, http.MethodPost, "/pins?strong=true", clientID)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError(op, err)
	}
	defer resp.Body.Close()

	var pin pinResponse
	if err := decodeResponse(op, resp, &pin); err != nil {
		return nil, err
	}
	if pin.ID == 0 || pin.Code == "" {
		return nil, &shared.UpstreamError{Operation: op, Status: resp.StatusCode, Details: "response did not include a PIN"}
	}

	s.logger.Debug("issued PIN", "id", pin.ID)
	return &models.Pin{ID: pin.ID, Code: pin.Code, ClientID: clientID}, nil
}

// CheckPin reports the token granted for pinID, or nil while the user has not approved it yet.
func (s *PlexTVService) CheckPin(ctx context.Context, pinID int64, clientID string) (*oauth2.Token, error) {
	const op = "Failed to check PIN"

	req, err := s.newRequest(ctx, http.MethodGet, fmt.Sprintf("/pins/%d", pinID), clientID)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError(op, err)
	}
	defer resp.Body.Close()

	var pin pinResponse
	if err := decodeResponse(op, resp, &pin); err != nil {
		return nil, err
	}
	if pin.AuthToken == nil || *pin.AuthToken == "" {
		return nil, nil
	}
	return &oauth2.Token{AccessToken: *pin.AuthToken, TokenType: TokenType}, nil
}

// Resources lists the devices visible to the account behind token.
func (s *PlexTVService) Resources(ctx context.Context, token, clientID string) ([]models.ServerCandidate, error) {
	const op = "Failed to fetch resources"

	req, err := s.newRequest(ctx, http.MethodGet, "/resources?includeHttps=1&includeRelay=1", clientID)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerToken, token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError(op, err)
	}
	defer resp.Body.Close()

	var resources []models.ServerCandidate
	if err := decodeResponse(op, resp, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (s *PlexTVService) newRequest(ctx context.Context, method, path, clientID string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerProduct, s.product)
	req.Header.Set(headerVersion, s.version)
	req.Header.Set(headerClientID, clientID)
	return req, nil
}

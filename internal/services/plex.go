// Plex Media Server implementation
//
// Response types follow the JSON shape returned with Accept: application/json.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Stream types within a media part.
const (
	StreamTypeVideo = 1
	StreamTypeAudio = 2
)

// MediaContainer is the envelope every media server response is wrapped in.
type MediaContainer struct {
	Size      int         `json:"size"`
	Metadata  []Metadata  `json:"Metadata"`
	Directory []Directory `json:"Directory"`
}

type containerResponse struct {
	MediaContainer MediaContainer `json:"MediaContainer"`
}

// Metadata is one item in a container. For /status/sessions it is an active playback.
type Metadata struct {
	RatingKey        string            `json:"ratingKey"`
	Type             string            `json:"type"`
	Title            string            `json:"title"`
	GrandparentTitle string            `json:"grandparentTitle"`
	ParentTitle      string            `json:"parentTitle"`
	ParentIndex      FlexInt           `json:"parentIndex"`
	Index            FlexInt           `json:"index"`
	ViewOffset       FlexInt           `json:"viewOffset"`
	Duration         FlexInt           `json:"duration"`
	Thumb            string            `json:"thumb"`
	GrandparentThumb string            `json:"grandparentThumb"`
	Live             FlexBool          `json:"live"`
	User             *User             `json:"User"`
	Media            []Media           `json:"Media"`
	Session          *PlaybackSession  `json:"Session"`
	TranscodeSession *TranscodeSession `json:"TranscodeSession"`
}

// User is the account that owns a playback.
type User struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Media is one rendition of an item.
type Media struct {
	Container string `json:"container"`
	Protocol  string `json:"protocol"`
	Selected  bool   `json:"selected"`
	Part      []Part `json:"Part"`
}

// Part is one file of a media rendition.
type Part struct {
	Decision string   `json:"decision"`
	Stream   []Stream `json:"Stream"`
}

// Stream is a single elementary stream of a part.
type Stream struct {
	StreamType int    `json:"streamType"`
	Decision   string `json:"decision"`
	Context    string `json:"context"`
	Protocol   string `json:"protocol"`
	Addressing string `json:"addressing"`
	Location   string `json:"location"`
}

// PlaybackSession carries network details of an active playback.
type PlaybackSession struct {
	ID        string  `json:"id"`
	Bandwidth FlexInt `json:"bandwidth"`
	Location  string  `json:"location"`
}

// TranscodeSession is present while the server re-encodes a playback.
type TranscodeSession struct {
	Key           string  `json:"key"`
	Throttled     bool    `json:"throttled"`
	Complete      bool    `json:"complete"`
	Progress      float64 `json:"progress"`
	Speed         float64 `json:"speed"`
	Context       string  `json:"context"`
	VideoDecision string  `json:"videoDecision"`
	AudioDecision string  `json:"audioDecision"`
	Protocol      string  `json:"protocol"`
	Container     string  `json:"container"`
}

// Directory is a library section entry.
type Directory struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// PlexOptions configures a [PlexService].
type PlexOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Transport         http.RoundTripper
	Logger            *log.Logger
}

// PlexService calls one media server on behalf of one account token.
type PlexService struct {
	serverURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewPlexService creates a client for the media server at serverURL authenticated with token.
func NewPlexService(serverURL, token string, opts PlexOptions) *PlexService {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: TokenType})
	return &PlexService{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &tokenTransport{source: source, base: base},
		},
		limiter: limiter,
		logger:  logger,
	}
}

// Sessions returns the active playbacks.
func (p *PlexService) Sessions(ctx context.Context) ([]Metadata, error) {
	container, err := p.container(ctx, "Failed to fetch sessions", "/status/sessions")
	if err != nil {
		return nil, err
	}
	return container.Metadata, nil
}

// Sections returns the library sections.
func (p *PlexService) Sections(ctx context.Context) ([]Directory, error) {
	container, err := p.container(ctx, "Failed to fetch stats", "/library/sections")
	if err != nil {
		return nil, err
	}
	return container.Directory, nil
}

// SectionSize returns the item count of a section listing such as "all" or "albums".
func (p *PlexService) SectionSize(ctx context.Context, key, view string) (int, error) {
	path := fmt.Sprintf("/library/sections/%s/%s", url.PathEscape(key), url.PathEscape(view))
	container, err := p.container(ctx, "Failed to fetch stats", path)
	if err != nil {
		return 0, err
	}
	return container.Size, nil
}

// Thumbnail fetches the image at path, which is relative to the server root.
func (p *PlexService) Thumbnail(ctx context.Context, path string) (*Image, error) {
	const op = "Failed to fetch thumbnail"

	resp, err := p.do(ctx, op, path, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readImage(op, resp)
}

func (p *PlexService) container(ctx context.Context, op, path string) (*MediaContainer, error) {
	resp, err := p.do(ctx, op, path, contentTypeJSON)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body containerResponse
	if err := decodeResponse(op, resp, &body); err != nil {
		return nil, err
	}
	return &body.MediaContainer, nil
}

func (p *PlexService) do(ctx context.Context, op, path, accept string) (*http.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, shared.TransportError(op, err)
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serverURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, shared.TransportError(op, err)
	}

	p.logger.Debug("media server request", "path", req.URL.Path, "status", resp.StatusCode, "took", time.Since(start))
	return resp, nil
}

// tokenTransport attaches the account token as the X-Plex-Token header.
type tokenTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}

	clone := req.Clone(req.Context())
	clone.Header.Set(headerToken, token.AccessToken)
	return t.base.RoundTrip(clone)
}

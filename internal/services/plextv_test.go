package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/mediastats/internal/shared"
	tu "github.com/desertthunder/mediastats/internal/testing"
)

func newTestPlexTV(url string, client *http.Client) *PlexTVService {
	return NewPlexTVService(url, "Media Stats", "1.0", client, shared.NewLogger(io.Discard))
}

func TestPlexTVService(t *testing.T) {
	t.Run("New Defaults", func(t *testing.T) {
		srv := NewPlexTVService("", "p", "v", nil, nil)
		if srv.baseURL != DefaultProviderURL {
			t.Errorf("expected %s, got %s", DefaultProviderURL, srv.baseURL)
		}
		if srv.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("RequestPin", func(t *testing.T) {
		t.Run("Sends Identifying Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/pins" || r.URL.Query().Get("strong") != "true" {
					t.Errorf("expected /pins?strong=true, got %s", r.URL.String())
				}
				if got := r.Header.Get("X-Plex-Client-Identifier"); got != "client-1" {
					t.Errorf("expected client-1, got %s", got)
				}
				if got := r.Header.Get("X-Plex-Product"); got != "Media Stats" {
					t.Errorf("expected Media Stats, got %s", got)
				}
				if got := r.Header.Get("X-Plex-Version"); got != "1.0" {
					t.Errorf("expected 1.0, got %s", got)
				}
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, `{"id": 4242, "code": "ABCD1234"}`)
			}))
			defer server.Close()

			pin, err := newTestPlexTV(server.URL, nil).RequestPin(context.Background(), "client-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pin.ID != 4242 || pin.Code != "ABCD1234" || pin.ClientID != "client-1" {
				t.Errorf("unexpected pin %+v", pin)
			}
		})

		t.Run("Upstream Rejection Keeps Details", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"errors":[{"code":1000,"message":"X-Plex-Client-Identifier is missing"}]}`)
			}))
			defer server.Close()

			_, err := newTestPlexTV(server.URL, nil).RequestPin(context.Background(), "")

			var upstream *shared.UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upstream.Status != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", upstream.Status)
			}
			if _, ok := upstream.Details.(map[string]any); !ok {
				t.Errorf("expected decoded details, got %T", upstream.Details)
			}
		})

		t.Run("Missing Code", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"id": 1}`)
			}))
			defer server.Close()

			if _, err := newTestPlexTV(server.URL, nil).RequestPin(context.Background(), "c"); err == nil {
				t.Error("expected error for a PIN without a code")
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp: refused"))}

			_, err := newTestPlexTV("http://plex.invalid", client).RequestPin(context.Background(), "c")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

			if _, err := newTestPlexTV("http://plex.invalid", client).RequestPin(context.Background(), "c"); err == nil {
				t.Error("expected error when the body cannot be read")
			}
		})
	})

	t.Run("CheckPin", func(t *testing.T) {
		tc := []struct {
			name     string
			body     string
			expected string
		}{
			{"Pending Null Token", `{"id": 7, "code": "X", "authToken": null}`, ""},
			{"Pending Missing Token", `{"id": 7, "code": "X"}`, ""},
			{"Approved", `{"id": 7, "code": "X", "authToken": "secret"}`, "secret"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path != "/pins/7" {
						t.Errorf("expected /pins/7, got %s", r.URL.Path)
					}
					io.WriteString(w, tt.body)
				}))
				defer server.Close()

				token, err := newTestPlexTV(server.URL, nil).CheckPin(context.Background(), 7, "c")
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				if tt.expected == "" {
					if token != nil {
						t.Errorf("expected nil token while pending, got %+v", token)
					}
					return
				}
				if token == nil || token.AccessToken != tt.expected || token.TokenType != TokenType {
					t.Errorf("expected token %s, got %+v", tt.expected, token)
				}
			})
		}
	})

	t.Run("Resources", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-Plex-Token"); got != "tok" {
				t.Errorf("expected token header, got %q", got)
			}
			io.WriteString(w, `[
				{"name": "Home", "provides": "server", "presence": true, "connections": [
					{"protocol": "https", "address": "10.0.0.2", "port": 32400, "local": true, "relay": false}
				]},
				{"name": "Phone", "provides": "client,player", "presence": true, "connections": []}
			]`)
		}))
		defer server.Close()

		resources, err := newTestPlexTV(server.URL, nil).Resources(context.Background(), "tok", "c")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(resources) != 2 {
			t.Fatalf("expected 2 resources, got %d", len(resources))
		}
		if !resources[0].IsServer() || resources[1].IsServer() {
			t.Error("expected only the first resource to be a server")
		}
		if got := resources[0].Connections[0].URL(); got != "https://10.0.0.2:32400" {
			t.Errorf("expected https://10.0.0.2:32400, got %s", got)
		}
	})
}

// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// FakeMediaServer is an httptest media server that serves canned JSON bodies by path.
type FakeMediaServer struct {
	*httptest.Server

	Token string

	mu   sync.Mutex
	hits map[string]int
}

// Hits returns how many requests reached path.
func (f *FakeMediaServer) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// NewFakeMediaServer serves routes (path -> JSON body) and rejects requests without token.
//
// Paths not in routes return 404. Paths mapped to a body starting with "!" fail with 500 and the rest of the body.
func NewFakeMediaServer(t *testing.T, token string, routes map[string]string) *FakeMediaServer {
	t.Helper()

	fake := &FakeMediaServer{Token: token, hits: map[string]int{}}
	fake.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.hits[r.URL.Path]++
		fake.mu.Unlock()

		if r.Header.Get("X-Plex-Token") != token && r.URL.Query().Get("X-Plex-Token") != token {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"errors":[{"code":1001,"message":"User could not be authenticated"}]}`)
			return
		}

		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}

		if rest, failed := strings.CutPrefix(body, "!"); failed {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, rest)
			return
		}

		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			w.Header().Set("Content-Type", "application/json")
		} else {
			w.Header().Set("Content-Type", "image/jpeg")
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(fake.Close)
	return fake
}

// SessionsFixture is a /status/sessions body with one movie and one live episode.
const SessionsFixture = `{
  "MediaContainer": {
    "size": 2,
    "Metadata": [
      {
        "ratingKey": "101",
        "type": "movie",
        "title": "Heat",
        "viewOffset": 3720000,
        "duration": 10200000,
        "thumb": "/library/metadata/101/thumb/1",
        "User": {"title": "alice"},
        "Media": [{"container": "mkv", "Part": [{"decision": "directplay", "Stream": [
          {"streamType": 1, "decision": "directplay"},
          {"streamType": 2, "decision": "directplay"}
        ]}]}],
        "Session": {"id": "s1", "bandwidth": 8000, "location": "lan"}
      },
      {
        "ratingKey": "202",
        "type": "episode",
        "title": "Finale",
        "grandparentTitle": "The Show",
        "parentIndex": 2,
        "index": 5,
        "live": 1,
        "viewOffset": 60000,
        "duration": 3600000,
        "thumb": "/library/metadata/202/thumb/1",
        "grandparentThumb": "/library/metadata/200/thumb/1",
        "User": {"title": "bob"},
        "Media": [{"container": "mpegts", "protocol": "dash", "Part": [{"Stream": [
          {"streamType": 1, "decision": "copy"},
          {"streamType": 2, "decision": "copy"}
        ]}]}],
        "Session": {"id": "s2", "bandwidth": "2500", "location": "wan"},
        "TranscodeSession": {"key": "t2", "videoDecision": "transcode", "audioDecision": "copy", "container": "mp4"}
      }
    ]
  }
}`

// SectionsFixture is a /library/sections body with one section of each counted kind plus photos.
const SectionsFixture = `{
  "MediaContainer": {
    "size": 4,
    "Directory": [
      {"key": "1", "type": "movie", "title": "Movies"},
      {"key": "2", "type": "show", "title": "TV"},
      {"key": "3", "type": "artist", "title": "Music"},
      {"key": "4", "type": "photo", "title": "Photos"}
    ]
  }
}`

// SizeFixture returns a container body reporting size n.
func SizeFixture(n int) string {
	return `{"MediaContainer":{"size":` + strconv.Itoa(n) + `}}`
}


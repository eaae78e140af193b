package pairing

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
	"golang.org/x/oauth2"
)

const (
	testInterval = 10 * time.Millisecond
	testTimeout  = 150 * time.Millisecond
)

type fakeProvider struct {
	pinErr       error
	approveAfter int32
	checkErrs    int32
	resources    []models.ServerCandidate
	resourcesErr error

	checks atomic.Int32
}

func (p *fakeProvider) RequestPin(ctx context.Context, clientID string) (*models.Pin, error) {
	if p.pinErr != nil {
		return nil, p.pinErr
	}
	return &models.Pin{ID: 99, Code: "CODE", ClientID: clientID}, nil
}

func (p *fakeProvider) CheckPin(ctx context.Context, pinID int64, clientID string) (*oauth2.Token, error) {
	n := p.checks.Add(1)
	if n <= p.checkErrs {
		return nil, errors.New("transient")
	}
	if p.approveAfter > 0 && n >= p.approveAfter {
		return &oauth2.Token{AccessToken: "granted"}, nil
	}
	return nil, nil
}

func (p *fakeProvider) Resources(ctx context.Context, token, clientID string) ([]models.ServerCandidate, error) {
	if token != "granted" {
		return nil, errors.New("unexpected token " + token)
	}
	return p.resources, p.resourcesErr
}

type memorySaver struct {
	saved []models.Credentials
}

func (s *memorySaver) Save(c models.Credentials) error {
	s.saved = append(s.saved, c)
	return nil
}

func firstChoice() Chooser {
	return ChooserFunc(func(ctx context.Context, choices []models.ServerChoice) (models.ServerChoice, error) {
		return choices[0], nil
	})
}

var homeServer = []models.ServerCandidate{{
	Name:        "Home",
	Provides:    "server",
	Presence:    true,
	Connections: []models.Connection{conn("relay", false, true), conn("192.168.1.10", true, false)},
}}

func newTestFlow(p Provider, saver Saver, chooser Chooser) *Flow {
	return NewFlow(Options{
		ClientID:     "client-1",
		Product:      "Media Stats",
		PollInterval: testInterval,
		Timeout:      testTimeout,
		Provider:     p,
		Chooser:      chooser,
		Saver:        saver,
		Logger:       shared.NewLogger(io.Discard),
	})
}

// assertNoMorePolls waits several ticks and fails if any further PIN check happens.
func assertNoMorePolls(t *testing.T, p *fakeProvider) {
	t.Helper()
	before := p.checks.Load()
	time.Sleep(5 * testInterval)
	if after := p.checks.Load(); after != before {
		t.Errorf("expected polling to stop at %d checks, got %d", before, after)
	}
}

func TestFlow(t *testing.T) {
	t.Run("Completes And Saves Credentials", func(t *testing.T) {
		provider := &fakeProvider{approveAfter: 3, resources: homeServer}
		saver := &memorySaver{}

		var opened string
		closed := false
		flow := newTestFlow(provider, saver, firstChoice())
		flow.opts.Opener = func(u string) (func(), error) {
			opened = u
			return func() { closed = true }, nil
		}

		var states []State
		var mu sync.Mutex
		flow.opts.OnTransition = func(from, to State) {
			mu.Lock()
			states = append(states, to)
			mu.Unlock()
		}

		result, err := flow.Run(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		expected := models.Credentials{ClientIdentifier: "client-1", Token: "granted", ServerAddress: "https://192.168.1.10:32400"}
		if result.Credentials != expected {
			t.Errorf("expected %+v, got %+v", expected, result.Credentials)
		}
		if len(saver.saved) != 1 || saver.saved[0] != expected {
			t.Errorf("expected credentials to be saved once, got %+v", saver.saved)
		}
		if !strings.Contains(opened, "code=CODE") || !strings.Contains(opened, "clientID=client-1") {
			t.Errorf("expected approval url with code and client id, got %s", opened)
		}
		if !closed {
			t.Error("expected approval page to be closed after the token arrived")
		}
		if flow.State() != StateComplete {
			t.Errorf("expected complete, got %s", flow.State())
		}

		want := []State{StateRequesting, StateAwaitingApproval, StateServerDiscovery, StateComplete}
		if len(states) != len(want) {
			t.Fatalf("expected transitions %v, got %v", want, states)
		}
		for i := range want {
			if states[i] != want[i] {
				t.Errorf("expected transition %d to be %s, got %s", i, want[i], states[i])
			}
		}

		assertNoMorePolls(t, provider)
	})

	t.Run("Transient Check Errors Are Retried", func(t *testing.T) {
		provider := &fakeProvider{checkErrs: 2, approveAfter: 3, resources: homeServer}

		if _, err := newTestFlow(provider, &memorySaver{}, firstChoice()).Run(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := provider.checks.Load(); got != 3 {
			t.Errorf("expected 3 checks, got %d", got)
		}
	})

	t.Run("Times Out", func(t *testing.T) {
		provider := &fakeProvider{}
		saver := &memorySaver{}
		flow := newTestFlow(provider, saver, firstChoice())

		start := time.Now()
		_, err := flow.Run(context.Background())

		if !errors.Is(err, shared.ErrPairingTimedOut) {
			t.Fatalf("expected ErrPairingTimedOut, got %v", err)
		}
		if err.Error() != "authentication timed out, please try again" {
			t.Errorf("unexpected message %q", err.Error())
		}
		if elapsed := time.Since(start); elapsed < testTimeout {
			t.Errorf("expected run to last at least %s, took %s", testTimeout, elapsed)
		}
		if flow.State() != StateTimedOut {
			t.Errorf("expected timed out, got %s", flow.State())
		}
		if len(saver.saved) != 0 {
			t.Error("expected nothing saved")
		}
		if provider.checks.Load() == 0 {
			t.Error("expected at least one PIN check")
		}

		assertNoMorePolls(t, provider)
	})

	t.Run("Abort Stops Polling", func(t *testing.T) {
		provider := &fakeProvider{}
		flow := NewFlow(Options{
			ClientID:     "client-1",
			PollInterval: testInterval,
			Timeout:      time.Minute,
			Provider:     provider,
			Chooser:      firstChoice(),
			Saver:        &memorySaver{},
			Logger:       shared.NewLogger(io.Discard),
		})

		errs := make(chan error, 1)
		go func() {
			_, err := flow.Run(context.Background())
			errs <- err
		}()

		deadline := time.Now().Add(2 * time.Second)
		for provider.checks.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(testInterval)
		}
		flow.Abort()

		select {
		case err := <-errs:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("expected run to return after abort")
		}

		if flow.State() != StateFailed {
			t.Errorf("expected failed, got %s", flow.State())
		}
		assertNoMorePolls(t, provider)
	})

	t.Run("Context Cancellation Stops Polling", func(t *testing.T) {
		provider := &fakeProvider{}
		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		defer cancel()

		flow := newTestFlow(provider, &memorySaver{}, firstChoice())
		flow.opts.Timeout = time.Minute

		if _, err := flow.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected caller deadline error, got %v", err)
		}
		assertNoMorePolls(t, provider)
	})

	t.Run("PIN Request Failure Is Surfaced Verbatim", func(t *testing.T) {
		upstream := &shared.UpstreamError{Operation: "Failed to request PIN", Status: 429, Details: map[string]any{"error": "slow down"}}
		provider := &fakeProvider{pinErr: upstream}
		flow := newTestFlow(provider, &memorySaver{}, firstChoice())

		_, err := flow.Run(context.Background())
		if err != upstream {
			t.Errorf("expected the provider error itself, got %v", err)
		}
		if flow.State() != StateFailed {
			t.Errorf("expected failed, got %s", flow.State())
		}
		if provider.checks.Load() != 0 {
			t.Error("expected no PIN checks after a failed request")
		}
	})

	t.Run("No Servers", func(t *testing.T) {
		provider := &fakeProvider{approveAfter: 1, resources: []models.ServerCandidate{
			{Name: "Phone", Provides: "player", Presence: true, Connections: []models.Connection{conn("x", true, false)}},
		}}
		flow := newTestFlow(provider, &memorySaver{}, firstChoice())

		if _, err := flow.Run(context.Background()); !errors.Is(err, shared.ErrNoServers) {
			t.Errorf("expected ErrNoServers, got %v", err)
		}
		if flow.State() != StateFailed {
			t.Errorf("expected failed, got %s", flow.State())
		}
	})

	t.Run("Selection Cancelled", func(t *testing.T) {
		provider := &fakeProvider{approveAfter: 1, resources: homeServer}
		saver := &memorySaver{}
		chooser := ChooserFunc(func(ctx context.Context, choices []models.ServerChoice) (models.ServerChoice, error) {
			return models.ServerChoice{}, shared.ErrSelectionCancelled
		})

		if _, err := newTestFlow(provider, saver, chooser).Run(context.Background()); !errors.Is(err, shared.ErrSelectionCancelled) {
			t.Errorf("expected ErrSelectionCancelled, got %v", err)
		}
		if len(saver.saved) != 0 {
			t.Error("expected nothing saved")
		}
	})

	t.Run("Opener Failure Does Not Stop Pairing", func(t *testing.T) {
		provider := &fakeProvider{approveAfter: 1, resources: homeServer}
		flow := newTestFlow(provider, &memorySaver{}, firstChoice())
		flow.opts.Opener = func(string) (func(), error) { return nil, errors.New("no browser") }

		if _, err := flow.Run(context.Background()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Restart After Failure", func(t *testing.T) {
		provider := &fakeProvider{pinErr: errors.New("down")}
		flow := newTestFlow(provider, &memorySaver{}, firstChoice())
		_, _ = flow.Run(context.Background())

		provider.pinErr = nil
		provider.approveAfter = 1
		provider.resources = homeServer
		if _, err := flow.Run(context.Background()); err != nil {
			t.Errorf("expected restart to succeed, got %v", err)
		}
	})

	t.Run("Missing Dependencies", func(t *testing.T) {
		flow := NewFlow(Options{ClientID: "c"})
		if _, err := flow.Run(context.Background()); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestState(t *testing.T) {
	if StateAwaitingApproval.String() != "awaiting approval" {
		t.Errorf("unexpected name %s", StateAwaitingApproval)
	}
	if !StateTimedOut.Terminal() || StateServerDiscovery.Terminal() {
		t.Error("unexpected terminal classification")
	}
}

func TestApprovalURL(t *testing.T) {
	got := ApprovalURL("", "client 1", "AB12", "Media Stats")
	expected := "https://app.plex.tv/auth#?clientID=client+1&code=AB12&context%5Bdevice%5D%5Bproduct%5D=Media+Stats"
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

package pairing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 5 * time.Minute
	DefaultAuthAppURL   = "https://app.plex.tv/auth"
)

// State is a step of a pairing attempt.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateAwaitingApproval
	StateServerDiscovery
	StateComplete
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateAwaitingApproval:
		return "awaiting approval"
	case StateServerDiscovery:
		return "server discovery"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateTimedOut
}

// Provider is the plex.tv API surface the flow needs.
type Provider interface {
	RequestPin(ctx context.Context, clientID string) (*models.Pin, error)
	CheckPin(ctx context.Context, pinID int64, clientID string) (*oauth2.Token, error)
	Resources(ctx context.Context, token, clientID string) ([]models.ServerCandidate, error)
}

// Opener presents the approval URL to the user. The returned func, when non-nil, closes
// whatever was opened.
type Opener func(approvalURL string) (close func(), err error)

// Chooser asks the user to pick one of the discovered servers.
type Chooser interface {
	Choose(ctx context.Context, choices []models.ServerChoice) (models.ServerChoice, error)
}

// ChooserFunc adapts a function to [Chooser].
type ChooserFunc func(ctx context.Context, choices []models.ServerChoice) (models.ServerChoice, error)

func (f ChooserFunc) Choose(ctx context.Context, choices []models.ServerChoice) (models.ServerChoice, error) {
	return f(ctx, choices)
}

// Saver persists the paired credentials.
type Saver interface {
	Save(models.Credentials) error
}

// Options configures a [Flow].
type Options struct {
	ClientID     string
	Product      string
	AuthAppURL   string
	PollInterval time.Duration
	Timeout      time.Duration

	Provider Provider
	Opener   Opener
	Chooser  Chooser
	Saver    Saver
	Logger   *log.Logger

	// OnTransition is called after every state change, outside the flow's lock.
	OnTransition func(from, to State)
}

// Result is the outcome of a completed pairing.
type Result struct {
	Credentials models.Credentials
	Server      models.ServerChoice
}

// Flow drives one pairing attempt at a time.
type Flow struct {
	opts   Options
	logger *log.Logger

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	stopPolling context.CancelFunc
}

// NewFlow creates a flow in the idle state.
func NewFlow(opts Options) *Flow {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.AuthAppURL == "" {
		opts.AuthAppURL = DefaultAuthAppURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Flow{opts: opts, logger: logger}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Abort cancels a running attempt. Run returns with the context error and the flow ends in [StateFailed].
func (f *Flow) Abort() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Run performs a full pairing attempt.
//
// A failed PIN request is returned as-is, usually a [*shared.UpstreamError] carrying the
// provider payload. Other outcomes are [shared.ErrPairingTimedOut], [shared.ErrNoServers],
// the chooser's error, or the context error after [Flow.Abort].
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	if !f.state.Terminal() && f.state != StateIdle {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: pairing already in progress", shared.ErrInvalidInput)
	}
	prev := f.state
	f.state = StateRequesting
	f.cancel = cancel
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.cancel = nil
		f.mu.Unlock()
	}()

	f.notify(prev, StateIdle)
	f.notify(StateIdle, StateRequesting)

	clientID := f.opts.ClientID
	pin, err := f.opts.Provider.RequestPin(runCtx, clientID)
	if err != nil {
		return nil, f.fail(err)
	}

	f.transition(StateAwaitingApproval)
	approval := ApprovalURL(f.opts.AuthAppURL, clientID, pin.Code, f.opts.Product)

	closeApproval := func() {}
	if f.opts.Opener != nil {
		closer, err := f.opts.Opener(approval)
		if err != nil {
			f.logger.Warn("could not open approval page", "error", err)
		} else if closer != nil {
			closeApproval = closer
		}
	}

	token, err := f.awaitToken(runCtx, pin)
	closeApproval()
	if err != nil {
		if errors.Is(err, shared.ErrPairingTimedOut) {
			f.transition(StateTimedOut)
			return nil, err
		}
		return nil, f.fail(err)
	}

	f.transition(StateServerDiscovery)
	candidates, err := f.opts.Provider.Resources(runCtx, token.AccessToken, clientID)
	if err != nil {
		return nil, f.fail(err)
	}

	choices := BuildChoices(FilterServers(candidates))
	if len(choices) == 0 {
		return nil, f.fail(shared.ErrNoServers)
	}

	choice, err := f.opts.Chooser.Choose(runCtx, choices)
	if err != nil {
		return nil, f.fail(err)
	}
	if err := runCtx.Err(); err != nil {
		return nil, f.fail(err)
	}

	creds := models.Credentials{
		ClientIdentifier: clientID,
		Token:            token.AccessToken,
		ServerAddress:    choice.Connection.URL(),
	}
	if err := f.opts.Saver.Save(creds); err != nil {
		return nil, f.fail(err)
	}

	f.transition(StateComplete)
	f.logger.Info("paired with server", "server", choice.Name, "address", creds.ServerAddress)
	return &Result{Credentials: creds, Server: choice}, nil
}

// awaitToken polls the PIN until it is approved, the deadline passes, or ctx ends.
func (f *Flow) awaitToken(ctx context.Context, pin *models.Pin) (*oauth2.Token, error) {
	pollCtx, stop := context.WithTimeout(ctx, f.opts.Timeout)
	defer stop()

	f.mu.Lock()
	f.stopPolling = stop
	f.mu.Unlock()

	tokens := make(chan *oauth2.Token, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.poll(pollCtx, pin, tokens)
	}()

	var token *oauth2.Token
	select {
	case token = <-tokens:
	case <-pollCtx.Done():
	}

	f.mu.Lock()
	f.stopPolling()
	f.stopPolling = nil
	f.mu.Unlock()
	<-done

	if token != nil {
		return token, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, shared.ErrPairingTimedOut
}

// poll checks the PIN on every tick. Failed checks are logged and retried on the next tick.
func (f *Flow) poll(ctx context.Context, pin *models.Pin, tokens chan<- *oauth2.Token) {
	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}

			token, err := f.opts.Provider.CheckPin(ctx, pin.ID, pin.ClientID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				f.logger.Debug("PIN check failed, retrying on next tick", "error", err)
				continue
			}
			if token != nil && token.AccessToken != "" {
				tokens <- token
				return
			}
		}
	}
}

func (f *Flow) fail(err error) error {
	f.transition(StateFailed)
	f.logger.Debug("pairing failed", "error", err)
	return err
}

func (f *Flow) transition(to State) {
	f.mu.Lock()
	from := f.state
	f.state = to
	f.mu.Unlock()

	f.notify(from, to)
}

func (f *Flow) notify(from, to State) {
	if from != to && f.opts.OnTransition != nil {
		f.opts.OnTransition(from, to)
	}
}

func (f *Flow) validate() error {
	switch {
	case f.opts.Provider == nil:
		return fmt.Errorf("%w: provider", shared.ErrMissingArgument)
	case f.opts.Chooser == nil:
		return fmt.Errorf("%w: chooser", shared.ErrMissingArgument)
	case f.opts.Saver == nil:
		return fmt.Errorf("%w: saver", shared.ErrMissingArgument)
	case f.opts.ClientID == "":
		return fmt.Errorf("%w: client identifier", shared.ErrMissingArgument)
	}
	return nil
}

// ApprovalURL builds the page where the user approves code for clientID.
func ApprovalURL(authAppURL, clientID, code, product string) string {
	if authAppURL == "" {
		authAppURL = DefaultAuthAppURL
	}

	params := url.Values{}
	params.Set("clientID", clientID)
	params.Set("code", code)
	params.Set("context[device][product]", product)
	return strings.TrimRight(authAppURL, "/") + "#?" + params.Encode()
}

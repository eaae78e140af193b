package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/formatter"
	"github.com/desertthunder/mediastats/internal/models"
)

// DataSource is where the dashboard reads its panels from.
type DataSource interface {
	Sessions(ctx context.Context) ([]models.Session, error)
	Stats(ctx context.Context) (*models.LibraryStats, error)
	Resources(ctx context.Context) (*models.ResourceUsage, error)
}

// Preferences is the persisted state the dashboard reads and changes.
type Preferences interface {
	Load() (models.Credentials, bool)
	Clear() error
	Theme() models.Theme
	ToggleTheme() (models.Theme, error)
}

// SourceFactory builds a [DataSource] for the stored credentials.
type SourceFactory func(models.Credentials) DataSource

// DashboardOptions configures polling and chrome timing.
type DashboardOptions struct {
	SessionsInterval time.Duration
	StatsInterval    time.Duration
	RetryAttempts    int
	RetryDelay       time.Duration
	ChromeHideAfter  time.Duration
	RequestTimeout   time.Duration
	Logger           *log.Logger
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.SessionsInterval <= 0 {
		o.SessionsInterval = 30 * time.Second
	}
	if o.StatsInterval <= 0 {
		o.StatsInterval = 5 * time.Minute
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 5 * time.Second
	}
	if o.ChromeHideAfter <= 0 {
		o.ChromeHideAfter = 3 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	return o
}

// Dashboard is the main TUI model.
//
// Without stored credentials it renders the unauthenticated view and polls nothing.
type Dashboard struct {
	ctx     context.Context
	prefs   Preferences
	factory SourceFactory
	source  DataSource
	opts    DashboardOptions
	logger  *log.Logger

	creds  models.Credentials
	authed bool

	sessions        []models.Session
	sessionsErr     error
	sessionsLoading bool
	stats           *models.LibraryStats
	statsErr        error
	statsLoading    bool
	usage           *models.ResourceUsage
	resourcesErr    error
	updatedAt       time.Time

	theme         models.Theme
	palette       *Palette
	chromeVisible bool
	chromeSeq     int
	notice        string

	width   int
	height  int
	bar     progress.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewDashboard creates a dashboard reading credentials and theme from prefs.
func NewDashboard(ctx context.Context, prefs Preferences, factory SourceFactory, opts DashboardOptions) *Dashboard {
	opts = opts.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	theme := prefs.Theme()
	d := &Dashboard{
		ctx:           ctx,
		prefs:         prefs,
		factory:       factory,
		opts:          opts,
		logger:        logger,
		theme:         theme,
		palette:       NewPalette(theme),
		chromeVisible: true,
		bar:           progress.New(progress.WithSolidFill(primary), progress.WithoutPercentage(), progress.WithWidth(30)),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:          help.New(),
		keys:          newKeyMap(),
	}
	d.spinner.Style = NewStyle(primary)

	if creds, ok := prefs.Load(); ok {
		d.creds = creds
		d.authed = true
		d.source = factory(creds)
	}
	return d
}

// Authenticated reports whether the dashboard has usable credentials.
func (d *Dashboard) Authenticated() bool { return d.authed }

// Init starts polling when authenticated.
func (d *Dashboard) Init() tea.Cmd {
	if !d.authed {
		return nil
	}
	d.sessionsLoading = true
	d.statsLoading = true
	return tea.Batch(
		d.fetchSessions(),
		d.fetchResources(1),
		d.fetchStats(),
		d.tick(d.opts.SessionsInterval, sessionsTickMsg{}),
		d.tick(d.opts.StatsInterval, statsTickMsg{}),
		d.scheduleHide(),
		d.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.help.Width = msg.Width
		return d, nil

	case tea.MouseMsg:
		return d, d.showChrome()

	case spinner.TickMsg:
		if !d.authed || !d.loading() {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		return d.handleKeys(msg)

	case sessionsTickMsg:
		if !d.authed {
			return d, nil
		}
		return d, tea.Batch(d.fetchSessions(), d.fetchResources(1), d.tick(d.opts.SessionsInterval, sessionsTickMsg{}))

	case statsTickMsg:
		if !d.authed {
			return d, nil
		}
		return d, tea.Batch(d.fetchStats(), d.tick(d.opts.StatsInterval, statsTickMsg{}))

	case sessionsFetchedMsg:
		if !d.authed {
			return d, nil
		}
		d.sessionsLoading = false
		d.sessionsErr = msg.err
		if msg.err == nil {
			d.sessions = msg.sessions
			d.updatedAt = time.Now()
		}
		return d, nil

	case statsFetchedMsg:
		if !d.authed {
			return d, nil
		}
		d.statsLoading = false
		d.statsErr = msg.err
		if msg.err == nil {
			d.stats = msg.stats
		}
		return d, nil

	case resourcesFetchedMsg:
		if !d.authed {
			return d, nil
		}
		if msg.err != nil {
			if msg.attempt < d.opts.RetryAttempts {
				d.logger.Debug("resources fetch failed, retrying", "attempt", msg.attempt, "error", msg.err)
				return d, d.tick(d.opts.RetryDelay, resourcesRetryMsg{attempt: msg.attempt + 1})
			}
			d.resourcesErr = msg.err
			return d, nil
		}
		d.resourcesErr = nil
		d.usage = msg.usage
		return d, nil

	case resourcesRetryMsg:
		if !d.authed {
			return d, nil
		}
		return d, d.fetchResources(msg.attempt)

	case hideChromeMsg:
		if d.authed && msg.seq == d.chromeSeq {
			d.chromeVisible = false
		}
		return d, nil
	}

	return d, nil
}

func (d *Dashboard) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	reveal := d.showChrome()

	switch {
	case key.Matches(msg, d.keys.quit):
		return d, tea.Quit

	case key.Matches(msg, d.keys.theme):
		theme, err := d.prefs.ToggleTheme()
		if err != nil {
			d.logger.Warn("failed to persist theme", "error", err)
		}
		d.theme = theme
		d.palette = NewPalette(theme)
		return d, reveal

	case !d.authed:
		return d, reveal

	case key.Matches(msg, d.keys.refresh):
		d.notice = ""
		d.sessionsLoading = true
		d.statsLoading = true
		return d, tea.Batch(reveal, d.fetchSessions(), d.fetchResources(1), d.fetchStats(), d.spinner.Tick)

	case key.Matches(msg, d.keys.logout):
		if err := d.prefs.Clear(); err != nil {
			d.notice = fmt.Sprintf("Logout failed: %v", err)
			return d, reveal
		}
		d.logout()
		return d, nil
	}

	return d, reveal
}

func (d *Dashboard) loading() bool {
	return d.sessionsLoading || d.statsLoading || (d.usage == nil && d.resourcesErr == nil)
}

// logout drops all server data and returns to the unauthenticated view.
func (d *Dashboard) logout() {
	d.authed = false
	d.creds = models.Credentials{}
	d.source = nil
	d.sessions = nil
	d.stats = nil
	d.usage = nil
	d.sessionsErr, d.statsErr, d.resourcesErr = nil, nil, nil
	d.chromeVisible = true
	d.notice = "Logged out."
}

// showChrome reveals the header and restarts the hide timer.
func (d *Dashboard) showChrome() tea.Cmd {
	d.chromeVisible = true
	return d.scheduleHide()
}

func (d *Dashboard) scheduleHide() tea.Cmd {
	if !d.authed {
		return nil
	}
	d.chromeSeq++
	seq := d.chromeSeq
	return tea.Tick(d.opts.ChromeHideAfter, func(time.Time) tea.Msg { return hideChromeMsg{seq: seq} })
}

func (d *Dashboard) tick(after time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return msg })
}

func (d *Dashboard) fetchSessions() tea.Cmd {
	source, ctx, timeout := d.source, d.ctx, d.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		sessions, err := source.Sessions(ctx)
		return sessionsFetchedMsg{sessions: sessions, err: err}
	}
}

func (d *Dashboard) fetchStats() tea.Cmd {
	source, ctx, timeout := d.source, d.ctx, d.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		stats, err := source.Stats(ctx)
		return statsFetchedMsg{stats: stats, err: err}
	}
}

func (d *Dashboard) fetchResources(attempt int) tea.Cmd {
	source, ctx, timeout := d.source, d.ctx, d.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		usage, err := source.Resources(ctx)
		return resourcesFetchedMsg{usage: usage, err: err, attempt: attempt}
	}
}

// View renders the unauthenticated view or the dashboard panels.
func (d *Dashboard) View() string {
	if !d.authed {
		return d.renderUnauthenticated()
	}

	var sections []string
	if d.chromeVisible {
		sections = append(sections, d.renderChrome())
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top, d.renderStats(), " ", d.renderResources())
	sections = append(sections, panels, d.renderSessions())

	if d.notice != "" {
		sections = append(sections, d.palette.err.Render(d.notice))
	}
	if d.chromeVisible {
		sections = append(sections, d.help.ShortHelpView(d.keys.ShortHelp()))
	}
	return d.palette.body.Render(strings.Join(sections, "\n\n"))
}

func (d *Dashboard) renderUnauthenticated() string {
	var b strings.Builder

	b.WriteString(d.palette.title.Render("Media Stats"))
	b.WriteString("\n")
	if d.notice != "" {
		b.WriteString(d.palette.ok.Render(d.notice))
		b.WriteString("\n\n")
	}
	b.WriteString("Not connected to a media server.\n")
	b.WriteString(d.palette.label.Render("Run `mediastats auth login` to pair with your Plex account."))
	b.WriteString("\n\n")
	b.WriteString(d.help.ShortHelpView([]key.Binding{d.keys.theme, d.keys.quit}))
	return d.palette.body.Render(b.String())
}

func (d *Dashboard) renderChrome() string {
	parts := []string{"Media Stats", d.creds.ServerAddress, string(d.theme)}
	if !d.updatedAt.IsZero() {
		parts = append(parts, "updated "+d.updatedAt.Format("15:04:05"))
	}
	return d.palette.chrome.Render(strings.Join(parts, " • "))
}

func (d *Dashboard) renderStats() string {
	var body string
	switch {
	case d.statsErr != nil:
		body = d.palette.err.Render("Error loading stats")
	case d.stats == nil:
		body = d.loadingView()
	default:
		body = strings.Join([]string{
			d.row("Movies", fmt.Sprint(d.stats.Movies)),
			d.row("TV Shows", fmt.Sprint(d.stats.Shows)),
			d.row("Music", fmt.Sprint(d.stats.Music)),
		}, "\n")
	}
	return d.card("Library", body)
}

func (d *Dashboard) renderResources() string {
	var body string
	switch {
	case d.resourcesErr != nil:
		body = d.palette.err.Render("Error loading resources")
	case d.usage == nil:
		body = d.loadingView()
	default:
		s := d.usage.Sessions
		body = strings.Join([]string{
			d.row("Streams", fmt.Sprint(s.Streams)),
			d.row("Transcodes", fmt.Sprint(s.Transcodes)),
			d.row("Bandwidth", formatter.FormatBandwidth(s.Bandwidth.Total)),
			d.row("LAN", formatter.FormatBandwidth(s.Bandwidth.LAN)),
			d.row("WAN", formatter.FormatBandwidth(s.Bandwidth.WAN)),
		}, "\n")
	}
	return d.card("Session Resources", body)
}

func (d *Dashboard) renderSessions() string {
	title := d.palette.accent.Render(fmt.Sprintf("Now Watching (%d)", len(d.sessions)))

	switch {
	case d.sessionsErr != nil:
		return title + "\n" + d.palette.err.Render(fmt.Sprintf("Error loading sessions: %v", d.sessionsErr))
	case d.sessionsLoading && d.sessions == nil:
		return title + "\n" + d.loadingView()
	case len(d.sessions) == 0:
		return title + "\n" + d.palette.label.Render("No active sessions")
	}

	blocks := []string{title}
	for _, s := range d.sessions {
		heading := d.palette.value.Render(formatter.SessionHeading(s))
		if s.IsLive {
			heading += " " + d.palette.err.Render("LIVE")
		}

		playback := d.palette.label.Render(formatter.TranscodeLabel(s.Transcoding))
		if s.Transcoding.IsTranscoding {
			playback = d.palette.accent.Render(formatter.TranscodeLabel(s.Transcoding))
		}

		blocks = append(blocks, strings.Join([]string{
			heading,
			d.palette.label.Render(s.User),
			d.bar.ViewAs(s.Percent()/100) + " " + formatter.FormatProgress(s),
			playback,
		}, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func (d *Dashboard) loadingView() string {
	return d.spinner.View() + d.palette.label.Render(" Loading...")
}

func (d *Dashboard) card(title, body string) string {
	return d.palette.card.Render(d.palette.accent.Render(title) + "\n" + body)
}

func (d *Dashboard) row(label, value string) string {
	return fmt.Sprintf("%s %s", d.palette.label.Render(fmt.Sprintf("%-11s", label)), d.palette.value.Render(value))
}

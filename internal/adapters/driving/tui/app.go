package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/views/recognize"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/views/session"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// terminalUserAgent selects generic error guidance for sessions started here.
const terminalUserAgent = "arvision-tui"

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView      *menu.View
	recognizeView *recognize.View
	sessionView   *session.View
	settingsView  *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// pending runs on Init, for apps opened straight into a session.
	pending tea.Cmd

	// quitOnClose exits instead of returning to the menu.
	quitOnClose bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		menuView:      menu.NewView(s, domain.DefaultRoutes()),
		recognizeView: recognize.NewView(s, km, ports.Recognition),
		sessionView:   session.NewView(s, km, ports.Sessions),
		settingsView:  settings.NewView(s, ports.Settings),
		currentView:   messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.recognizeView.WithContext(ctx)
	a.sessionView.WithContext(ctx)
	return a
}

// WithSession opens the app on an existing session. When start is true
// the app starts it. Leaving the session quits the app.
func (a *App) WithSession(sess driving.SessionController, start bool) *App {
	route := domain.Route{Title: sess.Variant().Title, Variant: sess.Variant().Name}
	for _, r := range domain.DefaultRoutes() {
		if r.Variant == route.Variant {
			route = r
			break
		}
	}
	a.pending = a.sessionView.Attach(route, sess, start)
	a.currentView = messages.ViewSession
	a.quitOnClose = true
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("arvision"),
		a.pending,
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if a.sessionView.Session() != nil {
				return a, tea.Sequence(a.sessionView.Close(), tea.Quit)
			}
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case messages.RouteSelected:
		return a, a.openRoute(msg.Route)

	case messages.ViewChanged:
		if a.quitOnClose && msg.View == messages.ViewMenu {
			return a, tea.Quit
		}
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewRecognize:
			a.recognizeView.Reset()
			return a, a.recognizeView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewSession, messages.ViewHelp:
		}
		return a, nil

	case messages.SessionStateChanged, messages.SessionStartReturned:
		a.sessionView, cmd = a.sessionView.Update(msg)
		return a, cmd

	case messages.SessionClosed:
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, nil

	case messages.ImagesLoaded, messages.RecognitionCompleted:
		a.recognizeView, cmd = a.recognizeView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewRecognize {
			a.recognizeView, cmd = a.recognizeView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewRecognize:
		a.recognizeView, cmd = a.recognizeView.Update(msg)
	case messages.ViewSession:
		a.sessionView, cmd = a.sessionView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// openRoute creates a session for route and shows it.
func (a *App) openRoute(route domain.Route) tea.Cmd {
	sess, err := a.ports.Sessions.Create(driving.SessionOptions{
		Variant:   route.Variant,
		UserAgent: terminalUserAgent,
	})
	if err != nil {
		a.err = fmt.Errorf("open %s: %w", route.Path, err)
		a.currentView = messages.ViewMenu
		return nil
	}
	a.err = nil
	a.currentView = messages.ViewSession
	return a.sessionView.Attach(route, sess, true)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewRecognize:
		return a.recognizeView.View()
	case messages.ViewSession:
		return a.sessionView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}

	out := a.menuView.View()
	if a.err != nil {
		out += "\n\n" + a.styles.Error.Render(a.err.Error())
	}
	return out
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate routes
  enter       Open route
  q           Quit

Recognition:
  ↑/↓         Choose reference image
  tab         Next descriptor format
  enter       Score the candidate locator

Session:
  r           Retry after an error
  esc         Close the session

[esc] back to menu`
}

// Run starts the TUI application. The program stops when the app's
// context is cancelled.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.recognizeView.SetDimensions(width, height)
	a.sessionView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}

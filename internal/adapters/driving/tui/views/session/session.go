// Package session renders a running AR session: loading, tracking and failures.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// View shows the state stream of one session at a time.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	sessions  driving.SessionManager
	ctx       context.Context

	route       domain.Route
	session     driving.SessionController
	state       domain.SessionState
	states      chan domain.SessionState
	stop        chan struct{}
	unsubscribe func()
	startErr    error

	width  int
	height int
	ready  bool
}

// NewView creates a session view. sessions is used to close sessions it
// created; when nil, sessions are closed directly.
func NewView(s *styles.Styles, km *keymap.KeyMap, sessions driving.SessionManager) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s, km)
	bar.SetHints(km.SessionHelp())

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: bar,
		sessions:  sessions,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context sessions are started with.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Attach shows sess, subscribes to its snapshots and, when start is true,
// starts it. Any previously attached session is detached, not closed.
func (v *View) Attach(route domain.Route, sess driving.SessionController, start bool) tea.Cmd {
	v.detach()

	v.route = route
	v.session = sess
	v.state = sess.State()
	v.startErr = nil
	v.statusbar.Clear()

	states := make(chan domain.SessionState, 16)
	stop := make(chan struct{})
	v.states, v.stop = states, stop
	v.unsubscribe = sess.Subscribe(func(s domain.SessionState) {
		select {
		case states <- s:
		case <-stop:
		}
	})

	cmds := []tea.Cmd{v.waitForState()}
	if start {
		cmds = append(cmds, v.start())
	}
	return tea.Batch(cmds...)
}

func (v *View) detach() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	if v.stop != nil {
		close(v.stop)
		v.stop = nil
	}
}

func (v *View) waitForState() tea.Cmd {
	id := v.session.ID()
	states, stop := v.states, v.stop
	return func() tea.Msg {
		select {
		case s := <-states:
			return messages.SessionStateChanged{SessionID: id, State: s}
		case <-stop:
			return nil
		}
	}
}

func (v *View) start() tea.Cmd {
	sess, ctx := v.session, v.ctx
	return func() tea.Msg {
		return messages.SessionStartReturned{SessionID: sess.ID(), Err: sess.Start(ctx)}
	}
}

// Close detaches and tears down the current session.
func (v *View) Close() tea.Cmd {
	sess := v.session
	if sess == nil {
		return nil
	}
	v.detach()
	v.session = nil
	sessions := v.sessions
	return func() tea.Msg {
		var err error
		if sessions != nil {
			err = sessions.Close(sess.ID())
		}
		if sessions == nil || errors.Is(err, domain.ErrNotFound) {
			err = sess.Close()
		}
		return messages.SessionClosed{SessionID: sess.ID(), Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SessionStateChanged:
		if v.session == nil || msg.SessionID != v.session.ID() {
			return v, nil
		}
		v.state = msg.State
		v.syncStatus()
		return v, v.waitForState()

	case messages.SessionStartReturned:
		if v.session != nil && msg.SessionID == v.session.ID() &&
			msg.Err != nil && !errors.Is(msg.Err, domain.ErrSessionClosed) {
			v.startErr = msg.Err
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, tea.Batch(v.Close(), func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		})
	case keymap.Matches(msg.String(), v.keymap.Retry) && v.state.Phase == domain.PhaseError:
		route := v.route
		return v, tea.Batch(v.Close(), func() tea.Msg {
			return messages.RouteSelected{Route: route}
		})
	}
	return v, nil
}

func (v *View) syncStatus() {
	s := v.state
	switch {
	case s.Phase == domain.PhaseError:
		v.statusbar.SetState(status.StateError)
		if s.Error != nil {
			v.statusbar.SetMessage(s.Error.Title)
		}
	case s.Tracking:
		v.statusbar.SetState(status.StateTracking)
		v.statusbar.SetMessage("Tracking " + s.DetectedObjectID)
	case s.Loading:
		v.statusbar.SetState(status.StateLoading)
		v.statusbar.SetMessage("")
	default:
		v.statusbar.Clear()
	}
}

// View renders the session.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	title := v.route.Title
	if title == "" && v.session != nil {
		title = v.session.Variant().Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	s := v.state
	b.WriteString("Phase: ")
	b.WriteString(v.styles.Phase(s.Phase).Render(s.Phase.String()))
	b.WriteString("\n\n")

	switch {
	case s.Phase == domain.PhaseError && s.Error != nil:
		b.WriteString(v.renderError(s.Error))
	case s.Loading:
		b.WriteString(v.styles.Warning.Render("Loading AR engine..."))
	case s.Tracking:
		b.WriteString(v.renderTracking(s.DetectedObjectID))
	case s.Phase == domain.PhaseReady:
		b.WriteString(v.styles.Muted.Render("Point the camera at a target."))
	case s.Phase == domain.PhaseTornDown:
		b.WriteString(v.styles.Muted.Render("Session closed."))
	default:
		b.WriteString(v.styles.Muted.Render("Waiting for the AR engine..."))
	}
	b.WriteString("\n")

	if v.startErr != nil && s.Error == nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(v.startErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderTracking(objectID string) string {
	badge := v.styles.Badge.Render("TRACKING")
	obj, ok := domain.LookupARObject(objectID)
	if !ok {
		return badge
	}
	return fmt.Sprintf("%s %s %s\n\n%s", badge, obj.Icon, v.styles.Subtitle.Render(obj.Name),
		v.styles.Normal.Render(obj.Story))
}

func (v *View) renderError(e *domain.SessionError) string {
	var b strings.Builder
	b.WriteString(v.styles.Error.Render(e.Title))
	b.WriteString("\n")
	b.WriteString(e.Message)
	for _, step := range e.Guidance {
		b.WriteString("\n  - ")
		b.WriteString(step)
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] retry  [esc] back"))
	return v.styles.Card.Render(b.String())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Session returns the attached session, or nil.
func (v *View) Session() driving.SessionController {
	return v.session
}

// State returns the last snapshot received.
func (v *View) State() domain.SessionState {
	return v.state
}

// StartErr returns the error Start returned, if it failed for a reason
// other than the session closing.
func (v *View) StartErr() error {
	return v.startErr
}

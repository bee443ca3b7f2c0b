// Package settings provides the settings view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// ErrNoSettingsService is reported when the view has nothing to load from.
var ErrNoSettingsService = errors.New("settings service not available")

// Field identifies an editable setting.
type Field int

const (
	// FieldThreshold edits the default recognition threshold.
	FieldThreshold Field = iota
	// FieldSource cycles the descriptor source kind.
	FieldSource
)

var fields = []Field{FieldThreshold, FieldSource}

// View shows the application settings and edits the common ones.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error
	notice   string

	selected  int
	editing   bool
	threshold textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	threshold := textinput.New()
	threshold.Placeholder = "0.0 - 1.0"
	threshold.CharLimit = 8

	return &View{
		styles:          s,
		settingsService: settingsService,
		threshold:       threshold,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// Reset leaves edit mode and clears notices.
func (v *View) Reset() {
	v.editing = false
	v.threshold.Blur()
	v.notice = ""
	v.err = nil
}

func (v *View) loadSettings() tea.Cmd {
	service := v.settingsService
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := service.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved."
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(fields)-1 {
			v.selected++
		}
	case "enter":
		if v.settings == nil || v.settingsService == nil {
			return v, nil
		}
		v.notice = ""
		switch fields[v.selected] {
		case FieldThreshold:
			v.editing = true
			v.threshold.SetValue(strconv.FormatFloat(v.settings.Recognition.Threshold, 'f', -1, 64))
			return v, v.threshold.Focus()
		case FieldSource:
			return v, v.cycleSource()
		}
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.threshold.Blur()
		return v, nil
	case tea.KeyEnter:
		value, err := strconv.ParseFloat(strings.TrimSpace(v.threshold.Value()), 64)
		if err != nil {
			v.err = fmt.Errorf("%w: threshold %q", domain.ErrInvalidInput, v.threshold.Value())
			return v, nil
		}
		v.editing = false
		v.threshold.Blur()
		service := v.settingsService
		return v, func() tea.Msg {
			return messages.SettingsSaved{Err: service.SetThreshold(value)}
		}
	}
	var cmd tea.Cmd
	v.threshold, cmd = v.threshold.Update(msg)
	return v, cmd
}

// cycleSource switches to the next source kind, keeping its location.
func (v *View) cycleSource() tea.Cmd {
	kinds := domain.AllDescriptorSources()
	next := kinds[(slices.Index(kinds, v.settings.Descriptors.Source)+1)%len(kinds)]
	location := v.settings.Descriptors.BaseURL
	if next != domain.SourceHTTP {
		location = v.settings.Descriptors.Dir
	}
	service := v.settingsService
	return func() tea.Msg {
		return messages.SettingsSaved{Err: service.SetDescriptorSource(next, location)}
	}
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render(v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}

	s := v.settings
	b.WriteString(v.field(FieldThreshold, "Threshold", v.thresholdValue()))
	b.WriteString(v.field(FieldSource, "Descriptor source", s.Descriptors.Source.Description()))
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render("Descriptors"))
	b.WriteString("\n")
	switch s.Descriptors.Source {
	case domain.SourceHTTP:
		fmt.Fprintf(&b, "  Base URL:   %s\n", s.Descriptors.BaseURL)
		fmt.Fprintf(&b, "  Rate limit: %g req/s\n", s.Descriptors.RateLimit)
	case domain.SourceDir:
		fmt.Fprintf(&b, "  Directory:  %s\n", s.Descriptors.Dir)
	case domain.SourceSQLite:
		b.WriteString("  Stored in the local database\n")
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render("Session"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Poll interval:   %s\n", s.Session.PollInterval)
	fmt.Fprintf(&b, "  Engine timeout:  %s\n", s.Session.EngineTimeout)
	fmt.Fprintf(&b, "  Loading timeout: %s\n\n", s.Session.LoadingTimeout)

	b.WriteString(v.styles.Subtitle.Render("Camera"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Device: %d  Ideal: %dx%d\n", s.Camera.Device, s.Camera.Width, s.Camera.Height)

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	} else if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit  [esc] Back"))
	return b.String()
}

func (v *View) thresholdValue() string {
	if v.editing {
		return v.threshold.View()
	}
	return strconv.FormatFloat(v.settings.Recognition.Threshold, 'f', -1, 64)
}

func (v *View) field(f Field, label, value string) string {
	line := fmt.Sprintf("%-18s %s", label+":", value)
	if fields[v.selected] == f {
		return v.styles.Selected.Render("> "+line) + "\n"
	}
	return "  " + line + "\n"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Editing reports whether the threshold is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Package menu provides the route menu, the terminal counterpart of the home page.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arvision/internal/core/domain"
)

// routeViews maps non-session routes that have a terminal view.
var routeViews = map[string]messages.ViewType{
	"/legacy/home": messages.ViewRecognize,
}

// Item represents a single menu option.
type Item struct {
	Label string
	Route domain.Route
	View  messages.ViewType
	Quit  bool // If true, selecting this item quits the app

	// Static items have no terminal view; selecting them only shows the path.
	Static bool
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	notice   string
	width    int
	height   int
	ready    bool
}

// NewView creates a menu listing routes in order, followed by settings, help and quit.
func NewView(s *styles.Styles, routes []domain.Route) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	items := make([]Item, 0, len(routes)+3)
	for _, r := range routes {
		if r.Path == "/" {
			continue
		}
		item := Item{Label: r.Title, Route: r}
		if r.Legacy {
			item.Label += " (legacy)"
		}
		switch view, ok := routeViews[r.Path]; {
		case r.IsSession():
			item.View = messages.ViewSession
		case ok:
			item.View = view
		default:
			item.Static = true
		}
		items = append(items, item)
	}
	items = append(items,
		Item{Label: "Settings", View: messages.ViewSettings},
		Item{Label: "Help", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)

	return &View{
		styles: s,
		items:  items,
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			v.notice = ""
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			v.notice = ""
			return v, nil

		case "enter":
			return v, v.choose(v.items[v.selected])

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	switch {
	case item.Quit:
		return tea.Quit
	case item.Static:
		v.notice = "Static page served at " + item.Route.Path
		return nil
	case item.Route.IsSession():
		route := item.Route
		return func() tea.Msg { return messages.RouteSelected{Route: route} }
	default:
		view := item.View
		return func() tea.Msg { return messages.ViewChanged{View: view} }
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("ARVision"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Augmented reality demo"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		if i == v.selected {
			cursor = "> "
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
		}
		line := cursor + style.Render(item.Label)
		if item.Route.Path != "" {
			line += "  " + v.styles.Muted.Render(item.Route.Path)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu items in display order.
func (v *View) Items() []Item {
	return v.items
}

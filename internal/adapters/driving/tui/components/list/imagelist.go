// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arvision/internal/core/domain"
)

// ImageList displays reference images in a navigable list.
type ImageList struct {
	images   []domain.ImageSummary
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewImageList creates a new image list component.
func NewImageList(s *styles.Styles) *ImageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ImageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *ImageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ImageList) Update(msg tea.Msg) (*ImageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *ImageList) View() string {
	if len(r.images) == 0 {
		return r.styles.Muted.Render("No reference images")
	}

	lines := make([]string, 0, len(r.images)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Reference images (%d)", len(r.images))), "")

	visible := r.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.images))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderImage(i, r.images[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ImageList) renderImage(index int, img domain.ImageSummary) string {
	label := fmt.Sprintf("%-20s %s", img.Name, img.DisplayName)
	if index == r.selected {
		return r.styles.Selected.Render("> " + label)
	}
	return "  " + r.styles.Normal.Render(label)
}

// SetImages replaces the list contents and resets the selection.
func (r *ImageList) SetImages(images []domain.ImageSummary) {
	r.images = images
	r.selected = 0
}

// Images returns the listed images.
func (r *ImageList) Images() []domain.ImageSummary {
	return r.images
}

// Selected returns the index of the selected image.
func (r *ImageList) Selected() int {
	return r.selected
}

// SelectedImage returns the selected image, or false if the list is empty.
func (r *ImageList) SelectedImage() (domain.ImageSummary, bool) {
	if r.selected < 0 || r.selected >= len(r.images) {
		return domain.ImageSummary{}, false
	}
	return r.images[r.selected], true
}

// MoveUp moves selection up.
func (r *ImageList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ImageList) MoveDown() {
	if r.selected < len(r.images)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ImageList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of images.
func (r *ImageList) Count() int {
	return len(r.images)
}

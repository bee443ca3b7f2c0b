// Package recognize provides the image recognition view: pick a reference
// image and format, enter a candidate locator, and score it.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// ErrNoRecognitionService indicates that no recognition service was provided.
var ErrNoRecognitionService = errors.New("recognition service is required")

// View lists reference images and scores candidates against them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.ImageList
	input     *input.TextInput
	statusbar *status.Bar
	service   driving.RecognitionService
	ctx       context.Context

	formats []domain.DescriptorFormat
	format  int
	result  *domain.RecognitionResult
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a recognition view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.RecognitionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s, km)
	bar.SetHints(km.RecognizeHelp())

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewImageList(s),
		input:     input.NewTextInput(s, "Candidate", "candidate locator"),
		statusbar: bar,
		service:   service,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context recognition runs under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the catalog.
func (v *View) Init() tea.Cmd {
	service := v.service
	return tea.Batch(v.input.Init(), func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoRecognitionService}
		}
		return messages.ImagesLoaded{Images: slices.Collect(service.ListAvailableImages())}
	})
}

// Reset clears the candidate and last result.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.result = nil
	v.err = nil
	v.statusbar.Clear()
}

// Update handles messages for the recognition view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ImagesLoaded:
		v.list.SetImages(msg.Images)
		v.loadFormats()
		return v, nil

	case messages.RecognitionCompleted:
		res := msg.Result
		v.result = &res
		v.err = nil
		if res.Success {
			v.statusbar.Clear()
		} else {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(res.Error)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case tea.KeyUp:
		v.list.MoveUp()
		v.loadFormats()
		return v, nil
	case tea.KeyDown:
		v.list.MoveDown()
		v.loadFormats()
		return v, nil
	case tea.KeyTab:
		if len(v.formats) > 0 {
			v.format = (v.format + 1) % len(v.formats)
		}
		return v, nil
	case tea.KeyEnter:
		return v, v.recognize()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// loadFormats reads the selected image's formats from the service.
func (v *View) loadFormats() {
	v.formats, v.format = nil, 0
	img, ok := v.list.SelectedImage()
	if !ok || v.service == nil {
		return
	}
	info, err := v.service.DescriptorInfo(img.Name)
	if err != nil {
		v.err = err
		return
	}
	v.formats = info.Available
}

// Format returns the selected descriptor format, or "" if none.
func (v *View) Format() domain.DescriptorFormat {
	if len(v.formats) == 0 {
		return ""
	}
	return v.formats[v.format]
}

func (v *View) recognize() tea.Cmd {
	img, ok := v.list.SelectedImage()
	candidate := strings.TrimSpace(v.input.Value())
	if !ok || candidate == "" || v.service == nil {
		return nil
	}
	v.statusbar.SetState(status.StateWorking)
	v.statusbar.SetMessage("Recognizing...")

	service, ctx, format := v.service, v.ctx, v.Format()
	return func() tea.Msg {
		res := service.Recognize(ctx, domain.CandidateLocator(candidate), img.Name, format, nil)
		return messages.RecognitionCompleted{Result: res}
	}
}

// View renders the recognition view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Image recognition"))
	b.WriteString("\n\n")
	b.WriteString(v.list.View())
	b.WriteString("\n\n")

	format := "-"
	if f := v.Format(); f != "" {
		format = f.String()
	}
	b.WriteString("Format: ")
	b.WriteString(v.styles.Subtitle.Render(format))
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n\n")

	if v.result != nil {
		b.WriteString(v.renderResult(*v.result))
		b.WriteString("\n")
	} else if v.err != nil {
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderResult(res domain.RecognitionResult) string {
	if !res.Success {
		return v.styles.Error.Render("Recognition failed: " + res.Error)
	}
	score := fmt.Sprintf("similarity %.4f (threshold %.2f)", res.Similarity, res.Threshold)
	if res.Match {
		return v.styles.Success.Render("Match: ") + score
	}
	return v.styles.Warning.Render("No match: ") + score
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.list.SetDimensions(width, max(height-14, 3))
	v.statusbar.SetWidth(width)
}

// Result returns the last recognition result, or nil.
func (v *View) Result() *domain.RecognitionResult {
	return v.result
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

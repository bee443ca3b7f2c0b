package settings

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/services"
)

func newLoadedView(t *testing.T) (*View, *services.SettingsService) {
	t.Helper()
	svc := services.NewSettingsService(memory.NewConfigStore())
	v := NewView(nil, svc)
	v.SetDimensions(100, 40)
	v.Update(v.Init()())
	require.NotNil(t, v.Settings())
	return v, svc
}

// apply feeds cmd's message back into the view, following reloads.
func apply(v *View, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = v.Update(msg)
	}
}

func TestView_LoadsSettings(t *testing.T) {
	v, _ := newLoadedView(t)

	out := v.View()
	assert.Contains(t, out, "Threshold:")
	assert.Contains(t, out, "0.6")
	assert.Contains(t, out, "HTTP (static file server)")
	assert.Contains(t, out, domain.DefaultDescriptorBaseURL)
	assert.Contains(t, out, "Engine timeout:  10s")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 24)

	v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoSettingsService)
	assert.Contains(t, v.View(), "settings service not available")
}

func TestView_EditThreshold(t *testing.T) {
	v, svc := newLoadedView(t)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Editing())

	v.threshold.SetValue("0.75")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	apply(v, cmd)

	assert.False(t, v.Editing())
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.75, settings.Recognition.Threshold, 1e-9)
	assert.InDelta(t, 0.75, v.Settings().Recognition.Threshold, 1e-9)
	assert.Contains(t, v.View(), "Saved.")
}

func TestView_EditThresholdRejectsInvalid(t *testing.T) {
	v, svc := newLoadedView(t)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.threshold.SetValue("abc")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
	assert.True(t, v.Editing())

	v.threshold.SetValue("1.5")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	apply(v, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.InDelta(t, domain.DefaultSimilarityThreshold, settings.Recognition.Threshold, 1e-9)
}

func TestView_EscCancelsEdit(t *testing.T) {
	v, _ := newLoadedView(t)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
}

func TestView_CycleSource(t *testing.T) {
	v, svc := newLoadedView(t)

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	apply(v, cmd)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDir, settings.Descriptors.Source)
	assert.Contains(t, v.View(), "Local directory")

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	apply(v, cmd)
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	apply(v, cmd)

	settings, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.SourceHTTP, settings.Descriptors.Source)
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v, _ := newLoadedView(t)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Navigation(t *testing.T) {
	v, _ := newLoadedView(t)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, v.selected)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.selected)
}

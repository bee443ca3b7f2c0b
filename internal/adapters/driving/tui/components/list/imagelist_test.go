package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

func testImages() []domain.ImageSummary {
	return []domain.ImageSummary{
		{Name: "logoGifty144x144", DisplayName: "Gifty logo"},
		{Name: "th", DisplayName: "TH"},
		{Name: "personne", DisplayName: "Portrait"},
	}
}

func TestNewImageList(t *testing.T) {
	l := NewImageList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.Zero(t, l.Count())
	_, ok := l.SelectedImage()
	assert.False(t, ok)
	assert.Contains(t, l.View(), "No reference images")
}

func TestImageList_Navigation(t *testing.T) {
	l := NewImageList(nil)
	l.SetImages(testImages())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	img, ok := l.SelectedImage()
	require.True(t, ok)
	assert.Equal(t, "personne", img.Name)

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	l.Update(tea.KeyMsg{Type: tea.KeyUp})
	l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, l.Selected())
}

func TestImageList_SetImagesResetsSelection(t *testing.T) {
	l := NewImageList(nil)
	l.SetImages(testImages())
	l.MoveDown()

	l.SetImages(testImages()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestImageList_View(t *testing.T) {
	l := NewImageList(nil)
	l.SetImages(testImages())

	view := l.View()

	assert.Contains(t, view, "Reference images (3)")
	assert.Contains(t, view, "> logoGifty144x144")
	assert.Contains(t, view, "Portrait")
}

func TestImageList_ViewScrollsToSelection(t *testing.T) {
	l := NewImageList(nil)
	l.SetImages(testImages())
	l.SetDimensions(80, 3)
	l.MoveDown()
	l.MoveDown()

	view := l.View()

	assert.Contains(t, view, "personne")
	assert.NotContains(t, view, "logoGifty144x144")
}

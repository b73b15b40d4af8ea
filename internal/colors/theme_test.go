package colors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessgif/internal/colors"
)

func TestLookupTheme(t *testing.T) {
	theme, err := colors.LookupTheme(" Nord ")
	require.NoError(t, err)
	assert.Equal(t, "#3b4252", theme.Dark)
	assert.Equal(t, "#d8dee9", theme.Light)
	assert.Equal(t, "Nord", theme.Label())
}

func TestLookupThemeUnknown(t *testing.T) {
	_, err := colors.LookupTheme("solarized")
	require.ErrorIs(t, err, colors.ErrUnknownTheme)
	assert.Equal(t, "invalid theme", err.Error())
}

func TestDefaultThemeIsGreen(t *testing.T) {
	theme := colors.DefaultTheme()
	assert.Equal(t, "green", theme.Name)
	assert.Equal(t, "#769656", theme.Dark)
	assert.Equal(t, "#eeeed2", theme.Light)
}

func TestThemesAreValidAndCopied(t *testing.T) {
	list := colors.Themes()
	require.Len(t, list, 4)
	for _, theme := range list {
		pair, err := theme.Pair()
		require.NoError(t, err, theme.Name)
		assert.Equal(t, theme.Dark, pair.Dark.String())
		assert.Equal(t, theme.Light, pair.Light.String())
	}

	list[0].Dark = "#ffffff"
	again := colors.Themes()
	assert.Equal(t, "#4b648a", again[0].Dark)
}

package capture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cstrafe/internal/model"
)

func TestKeyCode(t *testing.T) {
	cases := map[string]uint16{
		"a":        30,
		"D":        32,
		"space":    57,
		"Escape":   1,
		"left-alt": 56,
		"alt":      56,
	}
	for name, want := range cases {
		got, err := KeyCode(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
	_, err := KeyCode("hyper")
	require.Error(t, err)
}

func TestLabel(t *testing.T) {
	require.Equal(t, "A", Label("a"))
	require.Equal(t, "SPACE", Label("space"))
	require.Equal(t, "LEFT ALT", Label("alt"))
}

func TestParseBindingsRejectsDuplicates(t *testing.T) {
	_, err := ParseBindings(model.Config{Left: "a", Right: "a", Shoot: "space", Quit: "esc"})
	require.ErrorContains(t, err, "already bound")

	_, err = ParseBindings(model.Config{Left: "a", LeftAlias: "d", Right: "d", Shoot: "space", Quit: "esc"})
	require.Error(t, err)
}

func TestParseBindingsUnknownKey(t *testing.T) {
	_, err := ParseBindings(model.Config{Left: "a", Right: "d", Shoot: "mouse1", Quit: "esc"})
	require.ErrorContains(t, err, "shoot")
}

package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: defaultTheme, LastView: defaultView}, p)
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "roster")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"),
		[]byte("theme = \"Slate\"\nlast_view = \"Students\"\n"), 0o644))

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Slate", p.Theme)
	assert.Equal(t, "students", p.LastView)
}

func TestLoad_Normalizes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Prefs
	}{
		{"empty theme", "theme = \"\"\n", Prefs{Theme: defaultTheme, LastView: defaultView}},
		{"unknown view", "theme = \"Slate\"\nlast_view = \"queue\"\n", Prefs{Theme: "Slate", LastView: defaultView}},
		{"logs not restored", "last_view = \"logs\"\n", Prefs{Theme: defaultTheme, LastView: defaultView}},
		{"padded values", "theme = \" Kanagawa \"\nlast_view = \" SEARCH \"\n", Prefs{Theme: "Kanagawa", LastView: "search"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Load(writePrefs(t, tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, p)
		})
	}
}

func TestLoad_InvalidTOMLReturnsDefaultsAndError(t *testing.T) {
	p, err := Load(writePrefs(t, "not valid toml {{{\n"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse prefs"), err.Error())
	assert.Equal(t, Prefs{Theme: defaultTheme, LastView: defaultView}, p)
}

func TestSave_RoundTripsAndCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	p := Prefs{Theme: "Slate", LastView: "search"}
	require.NoError(t, Save(path, p))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := writePrefs(t, "theme = \"Slate\"\n")

	require.NoError(t, Save(path, Prefs{Theme: "Nightfox", LastView: "students"}))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Nightfox", loaded.Theme)
	assert.Equal(t, "students", loaded.LastView)
}

package catalog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"tpl/Header.tpl": {Data: []byte("-- shared header\n")},
		"tpl/alpha.tpl":  {Data: []byte("A")},
		"tpl/alpha.lua":  {Data: []byte(`return { caption = "Alpha", shortcut = "Ctrl+A" }`)},
		"tpl/beta.tpl":   {Data: []byte("B")},
		"tpl/beta.lua":   {Data: []byte(`return { caption = "Beta" }`)},
		"tpl/notes.txt":  {Data: []byte("not a template")},
	}
	cat := New(fsys, "tpl")
	descs, err := cat.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 3)

	assert.Equal(t, "Header", descs[0].Name)
	assert.True(t, descs[0].IsHeader())
	assert.Empty(t, descs[0].SettingsPath, "header needs no settings file")

	assert.Equal(t, "alpha", descs[1].Name)
	assert.Equal(t, "tpl/alpha.tpl", descs[1].ScriptPath)
	assert.Equal(t, "tpl/alpha.lua", descs[1].SettingsPath)
	assert.Equal(t, "Alpha", descs[1].Caption())
	assert.Equal(t, "Ctrl+A", descs[1].Shortcut())

	assert.Equal(t, "beta", descs[2].Name)
	assert.Equal(t, "Beta", descs[2].Caption())
	assert.Empty(t, descs[2].Shortcut())
}

func TestDiscoverSkipsInvalidEntries(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"alpha.tpl": {Data: []byte("A")},
		"alpha.lua": {Data: []byte(`return { caption = "Alpha" }`)},
		"beta.tpl":  {Data: []byte("B")},
		"beta.lua":  {Data: []byte(`return { caption = "Beta" }`)},
		"gamma.tpl": {Data: []byte("C")},
		"gamma.lua": {Data: []byte(`return { caption = "Gamma" }`)},
		// script without a settings companion
		"delta.tpl": {Data: []byte("D")},
		// settings that do not parse
		"epsilon.tpl": {Data: []byte("E")},
		"epsilon.lua": {Data: []byte(`{ caption = `)},
	}
	var buf bytes.Buffer
	cat := New(fsys, ".", WithLogger(testLogger(&buf)))
	descs, err := cat.Discover(context.Background())
	require.NoError(t, err, "discovery is total, never aborted by bad entries")
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
	assert.Contains(t, buf.String(), "delta", "missing settings warned")
	assert.Contains(t, buf.String(), "epsilon", "malformed settings warned")
}

func TestDiscoverYAMLSettingsFallback(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"delta.tpl":  {Data: []byte("D")},
		"delta.yaml": {Data: []byte("caption: Delta\nshortcut: Ctrl+D\n")},
	}
	cat := New(fsys, ".")
	descs, err := cat.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "delta.yaml", descs[0].SettingsPath)
	assert.Equal(t, "Delta", descs[0].Caption())
	assert.Equal(t, "Ctrl+D", descs[0].Shortcut())
}

func TestDiscoverLuaSettingsWinOverYAML(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"alpha.tpl":  {Data: []byte("A")},
		"alpha.lua":  {Data: []byte(`return { caption = "FromLua" }`)},
		"alpha.yaml": {Data: []byte("caption: FromYAML\n")},
	}
	cat := New(fsys, ".")
	descs, err := cat.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "FromLua", descs[0].Caption())
}

func TestDiscoverCustomExtensions(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"alpha.tmpl":     {Data: []byte("A")},
		"alpha.settings": {Data: []byte(`return { caption = "Alpha" }`)},
	}
	cat := New(fsys, ".", WithScriptExt(".tmpl"), WithSettingsExt(".settings"))
	descs, err := cat.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "alpha", descs[0].Name)
}

func TestDiscoverNonRecursive(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"alpha.tpl":        {Data: []byte("A")},
		"alpha.lua":        {Data: []byte(`return { caption = "Alpha" }`)},
		"nested/inner.tpl": {Data: []byte("I")},
		"nested/inner.lua": {Data: []byte(`return { caption = "Inner" }`)},
	}
	cat := New(fsys, ".")
	descs, err := cat.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "alpha", descs[0].Name)
}

func TestDiscoverMissingDirectory(t *testing.T) {
	t.Parallel()
	cat := New(fstest.MapFS{}, "nowhere")
	_, err := cat.Discover(context.Background())
	assert.Error(t, err)
}

func TestDiscoverCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cat := New(fstest.MapFS{"a.tpl": {Data: []byte("A")}}, ".")
	_, err := cat.Discover(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirNormalization(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"tpl/alpha.tpl": {Data: []byte("A")},
		"tpl/alpha.lua": {Data: []byte(`return { caption = "Alpha" }`)},
	}
	tests := []struct {
		name string
		dir  string
	}{
		{"plain", "tpl"},
		{"trailing slash", "tpl/"},
		{"double trailing slash", "tpl//"},
		{"backslashes", `tpl\`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			descs, err := New(fsys, tt.dir).Discover(context.Background())
			require.NoError(t, err)
			require.Len(t, descs, 1)
			assert.Equal(t, "tpl/alpha.tpl", descs[0].ScriptPath)
		})
	}
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/dmarkhas/templua"
)

// Default file extensions. The script holds the tagged template text; the
// settings companion is a Lua table literal with the same stem.
const (
	DefaultScriptExt   = ".tpl"
	DefaultSettingsExt = ".lua"
)

// YAML settings companions accepted when the Lua one is absent.
var yamlExts = []string{".yaml", ".yml"}

// Catalog scans one directory level of a filesystem for template
// script/settings pairs.
type Catalog struct {
	fsys        fs.FS
	dir         string
	scriptExt   string
	settingsExt string
	logger      *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithScriptExt overrides the script file extension.
func WithScriptExt(ext string) Option {
	return func(c *Catalog) { c.scriptExt = ext }
}

// WithSettingsExt overrides the settings file extension.
func WithSettingsExt(ext string) Option {
	return func(c *Catalog) { c.settingsExt = ext }
}

// WithLogger sets the logger skip warnings go to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// New creates a Catalog over dir within fsys. dir is normalized to forward
// slashes with trailing slashes stripped.
func New(fsys fs.FS, dir string, opts ...Option) *Catalog {
	c := &Catalog{
		fsys:        fsys,
		dir:         normalizePath(dir),
		scriptExt:   DefaultScriptExt,
		settingsExt: DefaultSettingsExt,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover enumerates the directory (non-recursive) and returns a
// descriptor for every valid script/settings pair, in enumeration order.
// The reserved Header template needs no settings file. Entries whose script
// is unreadable or whose settings are missing or malformed are skipped with
// a warning. An error is returned only when the directory itself cannot be
// enumerated.
func (c *Catalog) Discover(ctx context.Context) ([]templua.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(c.fsys, c.dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read dir %q: %w", c.dir, err)
	}
	descs := make([]templua.Descriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), c.scriptExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), c.scriptExt)
		scriptPath := path.Join(c.dir, entry.Name())
		if !c.readable(scriptPath) {
			c.logger.Warn("template script is unreadable, skipping", "name", name, "path", scriptPath)
			continue
		}
		d := templua.Descriptor{Name: name, ScriptPath: scriptPath, Settings: templua.Settings{}}
		settingsPath, data, err := c.readSettings(name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if !d.IsHeader() {
				c.logger.Warn("template has no settings file, skipping", "name", name, "path", scriptPath)
				continue
			}
		case err != nil:
			c.logger.Warn("template settings are unreadable, skipping", "name", name, "path", settingsPath, "error", err)
			continue
		default:
			settings, perr := parseSettings(settingsPath, data)
			if perr != nil {
				c.logger.Warn("template settings are malformed, skipping", "name", name, "path", settingsPath, "error", perr)
				continue
			}
			d.SettingsPath = settingsPath
			d.Settings = settings
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// readSettings resolves the companion settings file: the configured
// extension first, then the YAML fallbacks.
func (c *Catalog) readSettings(name string) (string, []byte, error) {
	exts := make([]string, 0, 1+len(yamlExts))
	exts = append(exts, c.settingsExt)
	exts = append(exts, yamlExts...)
	for _, ext := range exts {
		p := path.Join(c.dir, name+ext)
		data, err := fs.ReadFile(c.fsys, p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return p, nil, err
		}
	}
	return "", nil, fs.ErrNotExist
}

func parseSettings(p string, data []byte) (templua.Settings, error) {
	for _, ext := range yamlExts {
		if strings.HasSuffix(p, ext) {
			return templua.ParseSettingsYAML(data)
		}
	}
	return templua.ParseSettings(data)
}

func (c *Catalog) readable(p string) bool {
	f, err := c.fsys.Open(p)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// normalizePath converts separators to forward slashes and strips trailing
// slashes before any comparison or concatenation.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return "."
	}
	return p
}

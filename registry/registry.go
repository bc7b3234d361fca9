package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmarkhas/templua"
	"github.com/dmarkhas/templua/catalog"
)

// Host is the collaborator that binds captions to invokable commands.
// RegisterCommand returns the handle required to later unregister; a zero
// handle or an error means the registration was refused.
type Host interface {
	RegisterCommand(caption, shortcut string, invoke func() error) (templua.HandleID, error)
	UnregisterCommand(handle templua.HandleID) error
}

// Record is the registry's view of one live registration. Caption and
// Shortcut are the effective values after conflict degrading, which may
// differ from what the descriptor's settings requested.
type Record struct {
	Descriptor templua.Descriptor
	Handle     templua.HandleID
	Caption    string
	Shortcut   string
}

// Registry orchestrates register/unregister/reload transitions for every
// template the catalog discovers.
type Registry struct {
	host     Host
	catalog  *catalog.Catalog
	fsys     fs.FS
	compiler *templua.Compiler
	provider templua.ContextProvider
	target   templua.RenderTarget
	logger   *slog.Logger

	records     map[string]Record
	descriptors []templua.Descriptor
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger warnings and conflicts go to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New wires a Registry to its collaborators. fsys must be the same
// filesystem the catalog scans; script files are re-read through it on
// every render so edits are picked up without a reload.
func New(host Host, cat *catalog.Catalog, fsys fs.FS, compiler *templua.Compiler,
	provider templua.ContextProvider, target templua.RenderTarget, opts ...Option) *Registry {
	r := &Registry{
		host:     host,
		catalog:  cat,
		fsys:     fsys,
		compiler: compiler,
		provider: provider,
		target:   target,
		logger:   slog.Default(),
		records:  make(map[string]Record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadAll discovers the catalog and registers every descriptor in catalog
// order, best-effort over the whole batch. The reserved header template is
// never registered. A shortcut already claimed earlier in the pass (or by a
// live registration) is dropped from the later descriptor with a warning;
// the registration itself proceeds. Returns the number registered.
func (r *Registry) LoadAll(ctx context.Context) (int, error) {
	descs, err := r.catalog.Discover(ctx)
	if err != nil {
		return 0, err
	}
	r.descriptors = descs
	claimed := make(map[string]string)
	for caption, rec := range r.records {
		if rec.Shortcut != "" {
			claimed[rec.Shortcut] = caption
		}
	}
	registered := 0
	for _, d := range descs {
		if d.IsHeader() {
			continue
		}
		caption := d.Caption()
		if _, live := r.records[caption]; live {
			r.logger.Warn("caption already registered, skipping", "caption", caption, "name", d.Name)
			continue
		}
		shortcut := d.Shortcut()
		if shortcut != "" {
			if winner, taken := claimed[shortcut]; taken {
				r.logger.Warn("shortcut already claimed, registering without it",
					"shortcut", shortcut, "kept", winner, "dropped", caption)
				shortcut = ""
			} else {
				claimed[shortcut] = caption
			}
		}
		if err := r.register(d, caption, shortcut); err != nil {
			r.logger.Warn("registration failed", "caption", caption, "error", err)
			continue
		}
		registered++
	}
	return registered, nil
}

// Register binds one descriptor as a host command. A shortcut already held
// by a live registration is dropped rather than failing the call.
func (r *Registry) Register(d templua.Descriptor) error {
	caption := d.Caption()
	if _, live := r.records[caption]; live {
		return fmt.Errorf("%w: %q", ErrDuplicateCaption, caption)
	}
	shortcut := d.Shortcut()
	if shortcut != "" {
		for _, rec := range r.records {
			if rec.Shortcut == shortcut {
				r.logger.Warn("shortcut already claimed, registering without it",
					"shortcut", shortcut, "kept", rec.Caption, "dropped", caption)
				shortcut = ""
				break
			}
		}
	}
	return r.register(d, caption, shortcut)
}

// register asks the host for a handle and stores the record. A record is
// never stored without a valid handle.
func (r *Registry) register(d templua.Descriptor, caption, shortcut string) error {
	handle, err := r.host.RegisterCommand(caption, shortcut, r.renderFunc(d))
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrRegistrationFailed, caption, err)
	}
	if handle == templua.HandleNone {
		return fmt.Errorf("%w: %q: host returned no handle", ErrRegistrationFailed, caption)
	}
	r.records[caption] = Record{Descriptor: d, Handle: handle, Caption: caption, Shortcut: shortcut}
	return nil
}

// Unregister releases the registration for caption. An unknown caption is a
// warned no-op: callers may legitimately unregister something already gone.
// The record is removed even when the host fails to release the handle,
// since a handle the host would not release cannot be recovered here.
func (r *Registry) Unregister(caption string) error {
	rec, ok := r.records[caption]
	if !ok {
		r.logger.Warn("unregister of unknown caption is a no-op", "caption", caption)
		return nil
	}
	if err := r.host.UnregisterCommand(rec.Handle); err != nil {
		r.logger.Warn("host failed to release handle", "caption", caption, "handle", rec.Handle, "error", err)
	}
	delete(r.records, caption)
	return nil
}

// ReloadAll unregisters every live record, rediscovers the catalog, and
// loads it again. Running on the host's single thread, no caption is ever
// observable under two handles.
func (r *Registry) ReloadAll(ctx context.Context) (int, error) {
	captions := make([]string, 0, len(r.records))
	for caption := range r.records {
		captions = append(captions, caption)
	}
	slices.Sort(captions)
	for _, caption := range captions {
		_ = r.Unregister(caption)
	}
	return r.LoadAll(ctx)
}

// Records returns the live registrations sorted by caption.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b Record) int {
		return strings.Compare(a.Caption, b.Caption)
	})
	return out
}

// renderFunc builds the callback bound at registration time. It closes over
// its own descriptor copy so a reload racing an in-flight invocation cannot
// swap the script being rendered.
func (r *Registry) renderFunc(d templua.Descriptor) func() error {
	return func() error {
		data, err := fs.ReadFile(r.fsys, d.ScriptPath)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", templua.ErrScriptRead, d.ScriptPath, err)
		}
		builder := templua.NewEnvironmentBuilder(r.provider, r.compiler,
			templua.WithHeaderSource(r.headerSource),
			templua.WithBuilderLogger(r.logger),
		)
		env, err := builder.Build()
		if err != nil {
			return err
		}
		out, err := r.compiler.Render(string(data), env)
		if err != nil {
			return err
		}
		return r.target.WriteRendered(out)
	}
}

// headerSource reads the reserved header template of the current catalog
// snapshot. fs.ErrNotExist reports that the snapshot has none.
func (r *Registry) headerSource() (string, error) {
	for _, d := range r.descriptors {
		if d.IsHeader() {
			data, err := fs.ReadFile(r.fsys, d.ScriptPath)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
	return "", fs.ErrNotExist
}

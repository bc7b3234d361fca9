package templua

// HeaderName is the reserved template name. Its rendered output is exposed
// to every other template through the environment's Header binding, and it
// is never registered as a user-facing command.
const HeaderName = "Header"

// HandleID is the numeric identifier a host issues for a registered
// command. It is opaque to this package and required to unregister.
type HandleID int64

// HandleNone marks the absence of a handle.
const HandleNone HandleID = 0

// Settings keys the registry recognizes. Unrecognized keys are preserved
// and passed through untouched.
const (
	SettingCaption  = "caption"
	SettingShortcut = "shortcut"
	SettingSubmenu  = "submenu"
)

// Settings is the key/value metadata parsed from a template's companion
// settings file.
type Settings map[string]any

// Caption returns the display caption, or fallback when unset.
func (s Settings) Caption(fallback string) string {
	if v := s.str(SettingCaption); v != "" {
		return v
	}
	return fallback
}

// Shortcut returns the keyboard shortcut, empty meaning "no shortcut".
func (s Settings) Shortcut() string { return s.str(SettingShortcut) }

// Submenu returns the submenu grouping label, empty meaning top level.
func (s Settings) Submenu() string { return s.str(SettingSubmenu) }

func (s Settings) str(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Descriptor identifies one loadable template. Descriptors are created
// fresh on every catalog scan and never mutated; the next scan supersedes
// them wholesale.
type Descriptor struct {
	Name         string
	ScriptPath   string
	SettingsPath string
	Settings     Settings
}

// Caption returns the display caption, defaulting to the template name.
func (d Descriptor) Caption() string { return d.Settings.Caption(d.Name) }

// Shortcut returns the requested keyboard shortcut, possibly empty.
func (d Descriptor) Shortcut() string { return d.Settings.Shortcut() }

// IsHeader reports whether this is the reserved header template.
func (d Descriptor) IsHeader() bool { return d.Name == HeaderName }

// ContextProvider supplies the ambient values a render may reference:
// timestamps, selection and address information, computed identifiers.
// A nil map or an error means no context is available and the render fails.
type ContextProvider interface {
	CurrentContext() (map[string]any, error)
}

// RenderTarget receives the final rendered text of a template invocation.
// Whether the text is appended to or replaces existing content is the
// implementation's choice.
type RenderTarget interface {
	WriteRendered(text string) error
}

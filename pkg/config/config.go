// Package config defines core configuration types for picofix.
// These types are pure data structures; loading, merging, and validation
// live in internal/configloader.
package config

// Dialect selects which grammar the fixer parses input with.
type Dialect string

const (
	// DialectPico8 accepts the PICO-8 extensions and rewrites them.
	DialectPico8 Dialect = "pico8"

	// DialectLua accepts only standard Lua 5.3 syntax.
	DialectLua Dialect = "lua"
)

// IsValid returns true if the dialect is a known value.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectPico8, DialectLua:
		return true
	default:
		return false
	}
}

// BackupsConfig controls backup behavior when writing files in place.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// OutputFormat specifies the output format for results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// Config is the root configuration structure for picofix.
type Config struct {
	// Dialect selects the input grammar ("pico8" or "lua").
	Dialect Dialect `yaml:"dialect"`

	// Ignore contains glob patterns for files to skip during discovery.
	Ignore []string `yaml:"ignore"`

	// Backups configures backup behavior when writing.
	Backups BackupsConfig `yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// Write applies rewrites to files in place.
	Write bool `yaml:"-"`

	// DryRun reports what would change without touching any file.
	DryRun bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// NoBackups disables backup creation when writing.
	NoBackups bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialect: DialectPico8,
		Ignore:  nil,
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// AppName is the directory name used under the XDG config home.
const AppName = "groundwork"

// DefaultPaths returns the files searched when no path is given, in order.
func DefaultPaths() []string {
	dir := filepath.Join(xdg.ConfigHome, AppName)
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "config.toml"),
	}
}

// Loader loads configuration from the filesystem.
type Loader struct {
	fs          ports.FileSystem
	searchPaths []string
}

// NewLoader creates a Loader that searches the XDG config home.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs, searchPaths: DefaultPaths()}
}

// WithSearchPaths replaces the default search paths.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	return &Loader{fs: l.fs, searchPaths: paths}
}

// Load reads the configuration at path layered over the defaults. An empty
// path searches the default locations and falls back to the built-in
// defaults when none exists; an explicit path must exist.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range l.searchPaths {
			if l.fs.Exists(candidate) {
				path = candidate
				break
			}
		}
		if path == "" {
			return cfg, cfg.Validate("defaults")
		}
	} else {
		path = ports.ExpandPath(path)
		if !l.fs.Exists(path) {
			return nil, NewConfigNotFoundError(path)
		}
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, FormatOf(path), cfg); err != nil {
		return nil, NewConfigParseError(path, err)
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Format is a configuration file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from the file extension; YAML is the default.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Decode decodes data over cfg. Unknown keys are rejected.
func Decode(data []byte, format Format, cfg *Config) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
}

// Encode renders cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

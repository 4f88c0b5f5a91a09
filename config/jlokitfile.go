// Package config — .jlokit.yaml configuration file support.
//
// When a .jlokit.yaml file exists in the project root, jlokit uses it
// for the project layout and translator settings. A missing file is not
// an error: every setting has a built-in default. Command-line flags
// override the file, the file overrides the defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/jlokit/locale"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .jlokit.yaml structure.
type File struct {
	// Locale is the default target locale for all commands.
	Locale string `yaml:"locale,omitempty"`
	// RawDir receives the {stem}_raw.json unique-string lists.
	RawDir string `yaml:"raw_dir,omitempty"`
	// DataDir holds the tracking and record store files.
	DataDir string `yaml:"data_dir,omitempty"`
	// Readme is the status document carrying the progress badges.
	Readme string `yaml:"readme,omitempty"`
	// Translator configures the AI provider used by the translate command.
	Translator Translator `yaml:"translator,omitempty"`
}

// Translator holds the AI provider settings.
type Translator struct {
	// Provider: "claude", "deepseek", "qwen".
	Provider string `yaml:"provider,omitempty"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`
	// Proxy is an HTTP(S) proxy URL for API requests.
	Proxy string `yaml:"proxy,omitempty"`
}

// Built-in defaults, applied when .jlokit.yaml is absent or silent.
const (
	DefaultRawDir   = "raw"
	DefaultDataDir  = "data"
	DefaultReadme   = "README.md"
	DefaultProvider = "claude"
	DefaultTimeout  = 120
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the config file name.
const FileName = ".jlokit.yaml"

// Load reads and validates .jlokit.yaml from the given directory,
// filling in defaults for unset fields. Returns nil if no .jlokit.yaml
// exists. Unknown keys are rejected so typos do not silently fall back
// to defaults.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if f.Locale != "" {
		normalized, err := locale.Normalize(f.Locale)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		f.Locale = normalized
	}
	if f.Translator.Timeout < 0 {
		return nil, fmt.Errorf("%s: translator timeout must not be negative", path)
	}

	f.applyDefaults()
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.Locale == "" {
		f.Locale = locale.Default
	}
	if f.RawDir == "" {
		f.RawDir = DefaultRawDir
	}
	if f.DataDir == "" {
		f.DataDir = DefaultDataDir
	}
	if f.Readme == "" {
		f.Readme = DefaultReadme
	}
	if f.Translator.Provider == "" {
		f.Translator.Provider = DefaultProvider
	}
	if f.Translator.Timeout == 0 {
		f.Translator.Timeout = DefaultTimeout
	}
}

// ---------------------------------------------------------------------------
// Template
// ---------------------------------------------------------------------------

const defaultYAML = `# jlokit project configuration
locale: zh-CN          # default target locale
raw_dir: raw           # where {stem}_raw.json lists go
data_dir: data         # tracking and record store directory
readme: README.md      # status document with the progress badges
translator:
  provider: claude     # claude, deepseek, qwen
  model: ""            # empty = provider default
  base_url: ""         # empty = provider default
  timeout: 120         # seconds per API request
  proxy: ""            # optional HTTP(S) proxy URL
`

// WriteDefault writes a commented default .jlokit.yaml into rootDir and
// returns its path. An existing file is only overwritten with force.
func WriteDefault(rootDir string, force bool) (string, error) {
	path := filepath.Join(rootDir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(defaultYAML), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

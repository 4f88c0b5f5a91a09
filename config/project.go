package config

import (
	"os"
	"path/filepath"
)

// Project holds the resolved project layout with absolute paths.
type Project struct {
	// Name is the project name, taken from the root directory.
	Name string
	// Root is the absolute project root.
	Root string
	// Locale is the default target locale.
	Locale string
	// RawDir is the directory receiving {stem}_raw.json lists.
	RawDir string
	// DataDir is the directory holding tracking and record stores.
	DataDir string
	// Readme is the status document path.
	Readme string
	// Translator carries the AI provider settings.
	Translator Translator
	// HasConfig reports whether a .jlokit.yaml was found.
	HasConfig bool
}

// Detect resolves the project layout for rootDir: .jlokit.yaml when
// present, built-in defaults otherwise.
func Detect(rootDir string) (*Project, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	f, err := Load(absRoot)
	if err != nil {
		return nil, err
	}
	hasConfig := f != nil
	if f == nil {
		f = &File{}
		f.applyDefaults()
	}

	return &Project{
		Name:       filepath.Base(absRoot),
		Root:       absRoot,
		Locale:     f.Locale,
		RawDir:     resolvePath(absRoot, f.RawDir),
		DataDir:    resolvePath(absRoot, f.DataDir),
		Readme:     resolvePath(absRoot, f.Readme),
		Translator: f.Translator,
		HasConfig:  hasConfig,
	}, nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// RawListPath returns the raw list path for an input file stem.
func (p *Project) RawListPath(stem string) string {
	return filepath.Join(p.RawDir, stem+"_raw.json")
}

// TrackingPath returns the tracking store path for an input file stem.
func (p *Project) TrackingPath(stem string) string {
	return filepath.Join(p.DataDir, stem+".json")
}

// StringLiteralPath returns the merge target store path.
func (p *Project) StringLiteralPath() string {
	return filepath.Join(p.DataDir, "stringliteral.json")
}

// HasDataDir reports whether the data directory exists.
func (p *Project) HasDataDir() bool {
	info, err := os.Stat(p.DataDir)
	return err == nil && info.IsDir()
}

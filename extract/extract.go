// Package extract scans game data dumps (arbitrary nested JSON) for
// strings containing Japanese script and maintains the translation todo
// artifacts for each asset: a flat raw list and a tracking store of
// translation records.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/jlokit/store"
)

// Options configures a todo-generation run.
type Options struct {
	// InputFile is the JSON dump to scan.
	InputFile string
	// RawDir receives the {stem}_raw.json unique-string list.
	RawDir string
	// DataDir holds per-asset tracking stores. When the directory does
	// not exist the tracking step is skipped entirely.
	DataDir string

	// OnLog emits progress messages.
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Result summarizes a todo-generation run.
type Result struct {
	// Total is the number of Japanese strings found, duplicates included.
	Total int
	// Unique is the number after de-duplication.
	Unique int
	// Added is the number of records appended to the tracking store.
	Added int
	// RawPath is the raw list written.
	RawPath string
	// TrackingPath is the tracking store written, if any.
	TrackingPath string
}

// Run extracts Japanese strings from opts.InputFile, writes the unique
// list under opts.RawDir and reconciles the per-asset tracking store
// under opts.DataDir. Existing tracking records are never rewritten or
// removed; genuinely new strings are appended as bare records.
func Run(opts Options) (*Result, error) {
	data, err := os.ReadFile(opts.InputFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("input file %s not found", opts.InputFile)
		}
		return nil, fmt.Errorf("reading %s: %w", opts.InputFile, err)
	}

	texts, err := Scan(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON format in %s: %v", opts.InputFile, err)
	}
	unique := Dedupe(texts)

	opts.log("Found %d total Japanese texts", len(texts))
	opts.log("Found %d unique Japanese texts", len(unique))

	stem := Stem(opts.InputFile)
	res := &Result{
		Total:   len(texts),
		Unique:  len(unique),
		RawPath: filepath.Join(opts.RawDir, stem+"_raw.json"),
	}

	if err := store.SaveStringList(res.RawPath, unique); err != nil {
		return nil, fmt.Errorf("writing raw list: %w", err)
	}
	opts.log("Raw output written to: %s", res.RawPath)

	if info, err := os.Stat(opts.DataDir); err != nil || !info.IsDir() {
		opts.log("Data directory %s does not exist, skipping tracking update", opts.DataDir)
		return res, nil
	}

	trackingPath := filepath.Join(opts.DataDir, stem+".json")
	added, err := reconcileTracking(trackingPath, unique, opts)
	if err != nil {
		return nil, err
	}
	res.Added = added
	res.TrackingPath = trackingPath
	return res, nil
}

// reconcileTracking appends records for unknown strings to the tracking
// store at path. A corrupt store is discarded with a warning and
// recreated from the current extraction.
func reconcileTracking(path string, texts []string, opts Options) (int, error) {
	f := store.New()
	fresh := false

	switch existing, err := store.ParseFile(path); {
	case err == nil:
		f = existing
		opts.log("Found existing tracking file with %d entries: %s", f.Len(), path)
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, store.ErrNotArray):
		// Non-array content is quietly replaced, the way a missing
		// file would be.
	default:
		opts.log("Warning: tracking file %s is unreadable, starting fresh: %v", path, err)
		fresh = true
	}

	known := f.KnownSet()
	added := 0
	for _, text := range texts {
		if _, ok := known[text]; ok {
			continue
		}
		f.Append(store.NewRecord(text))
		added++
	}

	if added == 0 && !fresh {
		opts.log("No new entries to add to %s", path)
		return 0, nil
	}

	if err := f.WriteFile(path); err != nil {
		return 0, fmt.Errorf("writing tracking file: %w", err)
	}
	if fresh {
		opts.log("Created new tracking file due to read error: %s", path)
	} else {
		opts.log("Updated %s: added %d new entries", path, added)
		opts.log("Total entries in file: %d", f.Len())
	}
	return added, nil
}

// Stem returns the file name without directory or extension
// (raw/scenario.json -> scenario).
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

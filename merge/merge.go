// Package merge combines a raw-string array and a parallel translation
// array into a keyed record store. Existing records are updated in
// place, new raw strings are appended, and translations previously
// recorded for other locales are left untouched.
package merge

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/minios-linux/jlokit/store"
)

// Options configures a merge run.
type Options struct {
	// RawFile is a JSON array of source strings.
	RawFile string
	// TransFile is a JSON array of translations, parallel to RawFile.
	TransFile string
	// TargetFile is the record store to update (created if missing).
	TargetFile string
	// Locale tags the translation entries being written.
	Locale string
	// Author records who produced the translations.
	Author string

	// OnLog emits progress messages and warnings.
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Result summarizes a merge.
type Result struct {
	// Added is the number of records created.
	Added int
	// Updated is the number of pre-existing records touched, whether or
	// not the stored text actually changed.
	Updated int
	// Total is the store size after the merge.
	Total int
}

// Run loads the raw and translation arrays, merges them into the target
// store and writes it back. A length mismatch between the arrays is a
// warning: raw strings past the end of the translation array take an
// empty translation. An unreadable target is discarded with a warning
// and rebuilt from scratch.
func Run(opts Options) (*Result, error) {
	raws, err := store.LoadStringList(opts.RawFile)
	if err != nil {
		return nil, describeListError("raw file", opts.RawFile, err)
	}
	trans, err := store.LoadStringList(opts.TransFile)
	if err != nil {
		return nil, describeListError("translation file", opts.TransFile, err)
	}

	if len(raws) != len(trans) {
		opts.log("Warning: raw texts (%d) and translations (%d) count mismatch", len(raws), len(trans))
	}

	target := store.New()
	switch existing, err := store.ParseFile(opts.TargetFile); {
	case err == nil:
		target = existing
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, store.ErrNotArray):
		// Same treatment as a missing file.
	default:
		opts.log("Warning: target file %s contains invalid JSON, starting fresh", opts.TargetFile)
	}

	res := Merge(target, raws, trans, opts.Locale, opts.Author)

	if err := target.WriteFile(opts.TargetFile); err != nil {
		return nil, fmt.Errorf("writing target file: %w", err)
	}

	opts.log("Merge completed:")
	opts.log("  - Added %d new entries", res.Added)
	opts.log("  - Updated %d existing entries", res.Updated)
	opts.log("  - Total entries: %d", res.Total)
	opts.log("  - Target file: %s", opts.TargetFile)
	return res, nil
}

// Merge applies the raw/translation pair to the store in memory. For
// every index the locale's entry is set outright, overwriting whatever
// the record held for that locale before.
func Merge(target *store.File, raws, trans []string, loc, author string) *Result {
	lookup := target.Lookup()
	added, updated := 0, 0

	for i, raw := range raws {
		text := ""
		if i < len(trans) {
			text = trans[i]
		}
		entry := store.Entry{Text: text, Author: author}

		if idx, ok := lookup[raw]; ok {
			target.Items[idx].SetEntry(loc, entry)
			updated++
			continue
		}
		rec := store.NewRecord(raw)
		rec.SetEntry(loc, entry)
		target.Append(rec)
		lookup[raw] = target.Len() - 1
		added++
	}

	return &Result{Added: added, Updated: updated, Total: target.Len()}
}

func describeListError(label, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s not found", label, path)
	case errors.Is(err, store.ErrNotArray):
		return fmt.Errorf("%s %s should contain a JSON array", label, path)
	default:
		return fmt.Errorf("reading %s %s: %w", label, path, err)
	}
}

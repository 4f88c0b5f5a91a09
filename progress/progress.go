// Package progress computes translation coverage across the raw lists
// and record stores, and maintains the per-locale progress badge in the
// status document.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/jlokit/locale"
	"github.com/minios-linux/jlokit/store"
)

// Analyze unions the raw strings of every .json file directly under
// rawDir and dataDir, and counts how many store records carry a
// non-empty translation for the locale. The count is taken per file:
// the same raw string translated in two store files counts twice, while
// the total is deduplicated. A missing directory contributes nothing.
func Analyze(rawDir, dataDir, loc string) (total, translated int, err error) {
	raws := make(map[string]struct{})

	if err := collectRaws(rawDir, raws); err != nil {
		return 0, 0, err
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return len(raws), 0, nil
		}
		return 0, 0, fmt.Errorf("reading data directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		f, err := store.ParseFile(filepath.Join(dataDir, e.Name()))
		if err != nil {
			return 0, 0, err
		}
		for _, r := range f.Raws() {
			raws[r] = struct{}{}
		}
		translated += f.TranslatedCount(loc)
	}

	return len(raws), translated, nil
}

func collectRaws(dir string, raws map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading raw directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		f, err := store.ParseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		for _, r := range f.Raws() {
			raws[r] = struct{}{}
		}
	}
	return nil
}

// BadgeLine renders the shields.io badge for a locale's coverage.
func BadgeLine(loc string, translated, total int) string {
	esc := locale.BadgeEscape(loc)
	return fmt.Sprintf("![translation %s](https://img.shields.io/badge/translation_%s-%d%%2F%d-blue)", loc, esc, translated, total)
}

// Percent returns the coverage percentage, 0 when nothing is tracked.
func Percent(translated, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(translated) / float64(total) * 100
}

// WriteBadge updates the locale's badge line inside the status
// document's "## translation progress" section (delimited by the next
// --- line). The badge line is replaced in place, inserted before the
// section terminator when the locale has no badge yet, or appended as a
// whole new section when the heading is absent. A missing document is
// synthesized with a minimal skeleton first.
func WriteBadge(path string, total, translated int, loc string) error {
	badge := BadgeLine(loc, translated, total)
	marker := "translation_" + locale.BadgeEscape(loc)

	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		lines = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	case os.IsNotExist(err):
		lines = []string{"# translation", "", "---", "", "## translation progress", "", "---"}
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	start, end := -1, -1
	for i, line := range lines {
		if start < 0 {
			if strings.Contains(strings.ToLower(line), "## translation progress") {
				start = i
			}
			continue
		}
		if strings.TrimSpace(line) == "---" {
			end = i
			break
		}
	}

	switch {
	case start < 0:
		lines = append(lines, "", "## translation progress", "", badge, "", "---")
	default:
		replaced := false
		stop := end
		if stop < 0 {
			stop = len(lines)
		}
		for i := start + 1; i < stop; i++ {
			if strings.Contains(lines[i], marker) {
				lines[i] = badge
				replaced = true
				break
			}
		}
		if !replaced {
			if end >= 0 {
				lines = append(lines[:end], append([]string{badge}, lines[end:]...)...)
			} else {
				lines = append(lines, badge, "---")
			}
		}
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

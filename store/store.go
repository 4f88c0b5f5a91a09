// Package store implements reading and writing of translation record
// store files.
//
// A store file is a JSON array of records:
//
//	[
//	    {
//	        "raw": "こんにちは",
//	        "translation": {
//	            "zh-CN": { "text": "你好", "author": "alice" }
//	        }
//	    }
//	]
//
// Older files may carry bare strings instead of record objects. Such
// entries count as known raw strings with no translations and are
// written back unchanged. Array elements the tool does not understand
// (numbers, nested arrays) are carried through verbatim.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotArray indicates a file whose top-level JSON value is not an array.
var ErrNotArray = errors.New("not a JSON array")

// Entry is one locale's translation of a raw string. An empty Text means
// the locale is still untranslated.
type Entry struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// record is the wire form of a full record item.
type record struct {
	Raw         string           `json:"raw"`
	Translation map[string]Entry `json:"translation"`
}

// Item is one element of a store array: a record, a legacy bare string,
// or an opaque value preserved as-is.
type Item struct {
	Raw         string
	Translation map[string]Entry

	legacy bool
	opaque json.RawMessage
}

// NewRecord returns a record item with an empty translation mapping.
func NewRecord(raw string) Item {
	return Item{Raw: raw, Translation: map[string]Entry{}}
}

// Legacy reports whether the item was a bare string in the source file.
func (it *Item) Legacy() bool {
	return it.legacy
}

// Entry returns the locale's translation entry, if any.
func (it *Item) Entry(loc string) (Entry, bool) {
	e, ok := it.Translation[loc]
	return e, ok
}

// Translated reports whether the item has a non-empty translation for
// the locale.
func (it *Item) Translated(loc string) bool {
	return it.Translation[loc].Text != ""
}

// SetEntry records the locale's translation entry, overwriting any
// previous entry for the same locale.
func (it *Item) SetEntry(loc string, e Entry) {
	if it.Translation == nil {
		it.Translation = map[string]Entry{}
	}
	it.Translation[loc] = e
}

// UnmarshalJSON accepts a record object, a bare string, or any other
// JSON value (kept opaque).
func (it *Item) UnmarshalJSON(data []byte) error {
	d := bytes.TrimSpace(data)
	if len(d) == 0 {
		return errors.New("empty store item")
	}
	switch d[0] {
	case '"':
		var s string
		if err := json.Unmarshal(d, &s); err != nil {
			return err
		}
		*it = Item{Raw: s, legacy: true}
		return nil
	case '{':
		var rec record
		if err := json.Unmarshal(d, &rec); err != nil {
			return err
		}
		if rec.Translation == nil {
			rec.Translation = map[string]Entry{}
		}
		*it = Item{Raw: rec.Raw, Translation: rec.Translation}
		return nil
	default:
		*it = Item{opaque: append(json.RawMessage(nil), d...)}
		return nil
	}
}

// MarshalJSON writes the item back in its source shape.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.opaque != nil {
		return it.opaque, nil
	}
	if it.legacy {
		return encodeLiteral(it.Raw)
	}
	tr := it.Translation
	if tr == nil {
		tr = map[string]Entry{}
	}
	return encodeLiteral(record{Raw: it.Raw, Translation: tr})
}

// File is a parsed store file.
type File struct {
	Items []Item
}

// New returns an empty store.
func New() *File {
	return &File{}
}

// ParseFile reads and parses a store file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses store data. The top-level value must be a JSON array.
func Parse(data []byte) (*File, error) {
	d := bytes.TrimSpace(data)
	if len(d) == 0 || d[0] != '[' {
		return nil, ErrNotArray
	}
	var items []Item
	if err := json.Unmarshal(d, &items); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &File{Items: items}, nil
}

// Append adds an item at the end of the store.
func (f *File) Append(it Item) {
	f.Items = append(f.Items, it)
}

// Len returns the number of items, opaque ones included.
func (f *File) Len() int {
	return len(f.Items)
}

// Raws returns every known raw string in store order. Bare legacy
// strings are included; items without a raw string are not.
func (f *File) Raws() []string {
	var out []string
	for i := range f.Items {
		if r := f.Items[i].Raw; r != "" {
			out = append(out, r)
		}
	}
	return out
}

// KnownSet returns the set of known raw strings.
func (f *File) KnownSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range f.Raws() {
		set[r] = struct{}{}
	}
	return set
}

// Lookup maps each record's raw string to its index in Items. Legacy
// bare strings take no part in lookups: merging a raw string that only
// exists as a bare string appends a fresh record. Should duplicate raws
// exist, the last record wins.
func (f *File) Lookup() map[string]int {
	m := make(map[string]int)
	for i := range f.Items {
		it := &f.Items[i]
		if it.legacy || it.opaque != nil || it.Raw == "" {
			continue
		}
		m[it.Raw] = i
	}
	return m
}

// TranslatedCount returns how many records carry a non-empty translation
// for the locale.
func (f *File) TranslatedCount(loc string) int {
	n := 0
	for i := range f.Items {
		it := &f.Items[i]
		if it.legacy || it.opaque != nil {
			continue
		}
		if it.Translated(loc) {
			n++
		}
	}
	return n
}

// WriteFile writes the store back to disk with 2-space indentation,
// creating parent directories as needed.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal produces the JSON output with 2-space indentation. Non-ASCII
// text stays literal, matching the files the tool's ecosystem edits by
// hand.
func (f *File) Marshal() ([]byte, error) {
	items := f.Items
	if items == nil {
		items = []Item{}
	}
	return encodeIndent(items, "  ")
}

// LoadStringList reads a flat JSON array of strings (a raw list or a
// translated list).
func LoadStringList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d := bytes.TrimSpace(data)
	if len(d) == 0 || d[0] != '[' {
		return nil, fmt.Errorf("%s: %w", path, ErrNotArray)
	}
	var texts []string
	if err := json.Unmarshal(d, &texts); err != nil {
		return nil, fmt.Errorf("%s: parsing JSON: %w", path, err)
	}
	return texts, nil
}

// SaveStringList writes a flat JSON array of strings with 4-space
// indentation, creating parent directories as needed.
func SaveStringList(path string, texts []string) error {
	if texts == nil {
		texts = []string{}
	}
	data, err := encodeIndent(texts, "    ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// encodeIndent marshals v with the given indent, leaving non-ASCII and
// HTML-significant characters unescaped.
func encodeIndent(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeLiteral marshals v compactly without HTML escaping.
func encodeLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

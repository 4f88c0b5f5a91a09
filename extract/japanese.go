package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// japanese covers the script ranges that mark a string as translatable
// source text: Hiragana, Katakana, the CJK unified ideographs used by
// Japanese, and the halfwidth/fullwidth forms block.
var japanese = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x309F, Stride: 1},
		{Lo: 0x30A0, Hi: 0x30FF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FAF, Stride: 1},
		{Lo: 0xFF00, Hi: 0xFFEF, Stride: 1},
	},
}

// ContainsJapanese reports whether s contains at least one code point
// in the Japanese script ranges.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.Is(japanese, r) {
			return true
		}
	}
	return false
}

var unicodeEscape = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// decodeEscapes turns literal \uXXXX sequences into the characters they
// name. Game dumps sometimes double-escape their text, so the JSON
// decoder's own unescaping is not enough. Sequences that do not name a
// valid rune are left untouched.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	return unicodeEscape.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		r := rune(code)
		if !utf8.ValidRune(r) {
			return m
		}
		return string(r)
	})
}

// Scan parses a JSON document and returns every string leaf containing
// Japanese script, in document order, duplicates included. Object keys
// are not candidates, only values. Whitespace-only strings never
// qualify.
func Scan(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var out []string
	if err := walkValue(dec, &out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return out, nil
}

func walkValue(dec *json.Decoder, out *[]string) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	return walkToken(dec, t, out)
}

func walkToken(dec *json.Decoder, t json.Token, out *[]string) error {
	switch tok := t.(type) {
	case json.Delim:
		switch tok {
		case '{':
			for dec.More() {
				if _, err := dec.Token(); err != nil {
					return err
				}
				if err := walkValue(dec, out); err != nil {
					return err
				}
			}
			_, err := dec.Token()
			return err
		case '[':
			for dec.More() {
				if err := walkValue(dec, out); err != nil {
					return err
				}
			}
			_, err := dec.Token()
			return err
		}
	case string:
		if strings.TrimSpace(tok) == "" {
			return nil
		}
		if decoded := decodeEscapes(tok); ContainsJapanese(decoded) {
			*out = append(*out, decoded)
		}
	}
	return nil
}

// Dedupe removes duplicates preserving first-occurrence order.
func Dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

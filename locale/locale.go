// Package locale defines the fixed set of translation target locales
// (codes, display metadata) and helpers for normalizing user-supplied
// language codes.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Default is the locale assumed when none is configured.
const Default = "zh-CN"

// Meta describes locale display metadata.
type Meta struct {
	Name string
	Flag string
}

// registry contains the supported target locales. The tool tracks
// translations only for codes listed here; everything else is rejected
// by Normalize.
var registry = map[string]Meta{
	"zh-CN": {Name: "简体中文", Flag: "🇨🇳"},
	"zh-TW": {Name: "繁體中文", Flag: "🇹🇼"},
	"en":    {Name: "English", Flag: "🇺🇸"},
	"ja":    {Name: "日本語", Flag: "🇯🇵"},
	"ko":    {Name: "한국어", Flag: "🇰🇷"},
}

// codes lists the supported locales in display order.
var codes = []string{"zh-CN", "zh-TW", "en", "ja", "ko"}

// Supported returns the supported locale codes in display order.
func Supported() []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// IsSupported reports whether code is one of the supported locales.
func IsSupported(code string) bool {
	_, ok := registry[code]
	return ok
}

// Resolve returns display metadata for a locale code, accepting variants
// like zh_CN or ZH-cn. Unknown codes resolve to a bare Meta carrying the
// code itself as the name.
func Resolve(code string) Meta {
	if m, ok := registry[code]; ok {
		return m
	}
	if norm, err := Normalize(code); err == nil {
		return registry[norm]
	}
	return Meta{Name: code}
}

// Normalize canonicalizes a user-supplied language code (zh_cn, ZH-CN,
// zh-cn all become zh-CN) and verifies it is a supported locale.
func Normalize(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("empty locale code (supported: %s)", strings.Join(codes, ", "))
	}

	candidate := canonicalize(trimmed)
	if tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-")); err == nil {
		candidate = tag.String()
	}
	for _, c := range codes {
		if strings.EqualFold(c, candidate) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q (supported: %s)", code, strings.Join(codes, ", "))
}

// canonicalize applies lower/UPPER casing to the language and region
// subtags without consulting the registry. Fallback for codes the BCP 47
// parser rejects.
func canonicalize(code string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// BadgeEscape escapes a locale code for a shields.io badge label, where
// a literal dash must be doubled.
func BadgeEscape(code string) string {
	return strings.ReplaceAll(code, "-", "--")
}

// Base returns the lowercase primary language subtag (zh-CN -> zh).
func Base(code string) string {
	return strings.ToLower(strings.SplitN(code, "-", 2)[0])
}

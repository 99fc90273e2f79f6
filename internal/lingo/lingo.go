// Package lingo wraps natural-language detection and BCP-47 tag handling
// for the getLang/mapLang template filters and the variable registry.
package lingo

import (
	"os"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// Detect runs best-effort language detection on sample, restricted to the
// whitelist of bare subtags ("en", "fr", ...). It returns the detected
// subtag and true, or "" and false when detection is disabled (empty
// whitelist), the sample is too small, or the result is unreliable.
func Detect(sample string, whitelist []string) (string, bool) {
	sample = strings.TrimSpace(sample)
	if sample == "" || len(whitelist) == 0 {
		return "", false
	}

	allowed := make(map[whatlanggo.Lang]bool, len(whitelist))
	for _, tag := range whitelist {
		if lang := whatlanggo.CodeToLang(tag); lang != -1 {
			allowed[lang] = true
		}
	}
	if len(allowed) == 0 {
		return "", false
	}

	info := whatlanggo.DetectWithOptions(sample, whatlanggo.Options{Whitelist: allowed})
	if !info.IsReliable() {
		return "", false
	}

	code := info.Lang.Iso6391()
	if code == "" {
		code = info.Lang.Iso6393()
	}
	return code, code != ""
}

// Normalize maps a bare language subtag to a region-qualified tag using
// the configured lookup table. Tags that already carry a region are
// canonicalized; anything unparseable is returned unchanged (filters
// degrade, they don't fail).
func Normalize(tag string, table map[string]string, fallback string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fallback
	}

	if mapped, ok := table[strings.ToLower(tag)]; ok {
		return mapped
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if _, conf := parsed.Region(); conf >= language.High {
		return parsed.String()
	}
	return tag
}

// FromEnv derives the user's language tag from the LANG/LC_ALL environment
// ("en_US.UTF-8" -> "en-US"), falling back to the configured default.
func FromEnv(fallback string) string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		v = strings.ReplaceAll(v, "_", "-")
		if _, err := language.Parse(v); err == nil {
			return v
		}
	}
	return fallback
}

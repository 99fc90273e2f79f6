// Package config handles global plume configuration.
//
// The synchronization core treats the configuration as read-only input:
// the sort-tag character set, filename separators, copy-counter brackets,
// extension lists, the ordered validation table, and the template strings
// all live here with complete defaults, so plume works without a config
// file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global plume configuration.
type Config struct {
	// Filename controls how filenames are encoded and decoded.
	Filename FilenameConfig `toml:"filename"`

	// Extensions lists the file extensions plume recognizes.
	Extensions ExtensionsConfig `toml:"extensions"`

	// Language controls natural-language detection and tag mapping.
	Language LanguageConfig `toml:"language"`

	// Templates holds the content and filename template strings.
	Templates TemplateConfig `toml:"templates"`

	// Validate is the ordered per-field validation table. Order matters:
	// the first violated predicate of the first violated field is the one
	// reported.
	Validate []FieldRuleConfig `toml:"validate"`
}

// FilenameConfig controls the filename codec.
type FilenameConfig struct {
	// SortTagChars is the set of characters a sort tag may consist of.
	SortTagChars string `toml:"sort_tag_chars"`

	// SortTagSeparator terminates a sort tag. When non-empty, a leading
	// character run only counts as a sort tag if the separator follows it.
	SortTagSeparator string `toml:"sort_tag_separator"`

	// ExtraSeparator is inserted between sort tag and stem when the stem
	// itself starts with a sort-tag character and would re-parse wrongly.
	ExtraSeparator string `toml:"extra_separator"`

	// CopyCounterOpen and CopyCounterClose are parallel lists of bracket
	// alternatives tried in order when decoding a copy counter.
	CopyCounterOpen  []string `toml:"copy_counter_open"`
	CopyCounterClose []string `toml:"copy_counter_close"`

	// MaxStemLength bounds the sanitized filename stem, in runes.
	MaxStemLength int `toml:"max_stem_length"`

	// MaxCopyCounter bounds the collision search before giving up.
	MaxCopyCounter int `toml:"max_copy_counter"`
}

// ExtensionsConfig lists recognized file extensions.
type ExtensionsConfig struct {
	// Default is the extension given to newly created notes.
	Default string `toml:"default"`

	// Note are the extensions parsed as plume notes.
	Note []string `toml:"note"`

	// Foreign are plain-text extensions plume will annotate from the
	// filename instead of a header.
	Foreign []string `toml:"foreign"`
}

// LanguageConfig controls the getLang/mapLang template filters.
type LanguageConfig struct {
	// Detection whitelists the language tags considered during detection.
	// An empty list disables detection; getLang then returns Default.
	Detection []string `toml:"detection"`

	// Map normalizes bare subtags to region-qualified tags ("en" -> "en-US").
	Map map[string]string `toml:"map"`

	// Default is returned when detection is disabled or inconclusive.
	Default string `toml:"default"`
}

// TemplateConfig holds the template strings consumed by the renderer.
type TemplateConfig struct {
	// NewContent renders the front matter and body of a fresh note.
	NewContent string `toml:"new_content"`

	// FromTextContent renders a note from piped or clipboard text.
	FromTextContent string `toml:"from_text_content"`

	// AnnotateContent synthesizes front matter for a headerless file.
	AnnotateContent string `toml:"annotate_content"`

	// Filename renders the candidate filename after a content render or a
	// header parse; the front matter is available under .fm.
	Filename string `toml:"filename"`
}

// FieldRuleConfig binds an ordered predicate list to a front-matter field.
type FieldRuleConfig struct {
	Field      string   `toml:"field"`
	Predicates []string `toml:"predicates"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Filename: FilenameConfig{
			SortTagChars:     "0123456789.-_ ",
			SortTagSeparator: "-",
			ExtraSeparator:   "'",
			CopyCounterOpen:  []string{"(", "-"},
			CopyCounterClose: []string{")", ""},
			MaxStemLength:    96,
			MaxCopyCounter:   400,
		},
		Extensions: ExtensionsConfig{
			Default: "md",
			Note:    []string{"md", "markdown", "mdown"},
			Foreign: []string{"txt", "rst", "org", "adoc", "textile"},
		},
		Language: LanguageConfig{
			Detection: []string{"en", "fr", "de", "es"},
			Map: map[string]string{
				"en": "en-US",
				"fr": "fr-FR",
				"de": "de-DE",
				"es": "es-ES",
			},
			Default: "en-US",
		},
		Templates: TemplateConfig{
			NewContent: `---
{{ .title | default "No title" | cut | toYaml "title" 10 }}
{{ .subtitle | cut | toYaml "subtitle" 10 }}
{{ .username | title | toYaml "author" 10 }}
{{ .date | toYaml "date" 10 }}
{{ .lang | toYaml "lang" 10 }}
---


`,
			FromTextContent: `---
{{ index .txt_fm "title" | default (.txt | linkText) | default (.txt | heading) | cut | toYaml "title" 10 }}
{{ index .txt_fm "subtitle" | cut | toYaml "subtitle" 10 }}
{{ index .txt_fm "author" | default (.username | title) | toYaml "author" 10 }}
{{ index .txt_fm "date" | default .date | toYaml "date" 10 }}
{{ index .txt_fm "lang" | default (.txt_body | getLang | mapLang) | toYaml "lang" 10 }}
{{ omit .txt_fm "title" "subtitle" "author" "date" "lang" | toYamlMap }}
---

{{ .txt_body }}`,
			AnnotateContent: `---
{{ .path | fileStem | cut | toYaml "title" 10 }}
{{ .username | title | toYaml "author" 10 }}
{{ .date | toYaml "date" 10 }}
{{ .path | fileSortTag | toYaml "sort_tag" 10 }}
{{ .path | fileExt | toYaml "file_ext" 10 }}
---

`,
			Filename: `{{ index .fm "title" | default "No title" | sanit (index .fm "sort_tag" | default .sort_tag) }}{{ with index .fm "subtitle" }}--{{ . | sanit }}{{ end }}.{{ index .fm "file_ext" | default .extension }}`,
		},
		Validate: []FieldRuleConfig{
			{Field: "title", Predicates: []string{"IsDefined", "IsString", "IsNotEmptyString"}},
			{Field: "subtitle", Predicates: []string{"IsString"}},
			{Field: "author", Predicates: []string{"IsString"}},
			{Field: "date", Predicates: []string{"IsNotCompound"}},
			{Field: "lang", Predicates: []string{"IsString"}},
			{Field: "sort_tag", Predicates: []string{"IsNotCompound", "HasOnlySortTagChars"}},
			{Field: "file_ext", Predicates: []string{"IsString", "IsRecognizedExtension"}},
		},
	}
}

// Load loads the configuration from the default location.
// Returns the built-in defaults if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Settings absent
// from the file keep their built-in defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "plume", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "plume", "config.toml")
}

func (c *Config) check() error {
	if len(c.Filename.CopyCounterOpen) != len(c.Filename.CopyCounterClose) {
		return fmt.Errorf("copy_counter_open and copy_counter_close must have the same length")
	}
	if c.Extensions.Default == "" {
		return fmt.Errorf("extensions.default must not be empty")
	}
	if c.Filename.MaxCopyCounter < 1 {
		return fmt.Errorf("filename.max_copy_counter must be at least 1")
	}
	return nil
}

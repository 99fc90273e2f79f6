package template

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	texttemplate "text/template"

	goslug "github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/plumenote/plume/internal/config"
	"github.com/plumenote/plume/internal/filename"
	"github.com/plumenote/plume/internal/lingo"
	"github.com/plumenote/plume/internal/note"
)

// cutDefaultLength bounds the cut filter when no explicit length is given.
// It keeps a YAML scalar on one readable line.
const cutDefaultLength = 200

// Filters returns the plume filter library. Each filter is a pure function
// of its input and arguments: malformed but well-typed input degrades to
// the empty string or the unchanged input, never a panic. Wrong arity or
// argument types fail the render.
func Filters(cfg *config.Config) texttemplate.FuncMap {
	opts := FilenameOptions(cfg)

	return texttemplate.FuncMap{
		"sanit": func(args ...any) (string, error) {
			switch len(args) {
			case 1:
				return Sanitize(note.Scalar(args[0]), cfg.Filename.MaxStemLength), nil
			case 2:
				tag := strings.TrimSpace(note.Scalar(args[0]))
				stem := Sanitize(note.Scalar(args[1]), cfg.Filename.MaxStemLength)
				return filename.JoinTag(tag, stem, opts), nil
			default:
				return "", fmt.Errorf("sanit: want 1 argument or a sort tag and 1 argument, got %d", len(args))
			}
		},

		"cut": func(args ...any) (string, error) {
			switch len(args) {
			case 1:
				return firstLine(note.Scalar(args[0]), cutDefaultLength), nil
			case 2:
				max, ok := args[0].(int)
				if !ok || max < 1 {
					return "", fmt.Errorf("cut: length must be a positive integer")
				}
				return firstLine(note.Scalar(args[1]), max), nil
			default:
				return "", fmt.Errorf("cut: want 1 argument or a length and 1 argument, got %d", len(args))
			}
		},

		"heading": func(v any) string {
			return Heading(note.Scalar(v))
		},

		"linkText": func(v any) string {
			text, _, _, ok := extractLink(note.Scalar(v))
			if !ok {
				return ""
			}
			return text
		},

		"linkDest": func(v any) string {
			_, dest, _, ok := extractLink(note.Scalar(v))
			if !ok {
				return ""
			}
			return dest
		},

		"linkTitle": func(v any) string {
			_, _, title, ok := extractLink(note.Scalar(v))
			if !ok {
				return ""
			}
			return title
		},

		"toYaml": ToYAML,

		"toYamlMap": ToYAMLMap,

		"getLang": func(v any) string {
			tag, ok := lingo.Detect(note.Scalar(v), cfg.Language.Detection)
			if !ok {
				return cfg.Language.Default
			}
			return tag
		},

		"mapLang": func(v any) string {
			return lingo.Normalize(note.Scalar(v), cfg.Language.Map, cfg.Language.Default)
		},

		"fileSortTag": func(v any) string {
			return decodeBase(v, opts).SortTag
		},

		"fileStem": func(v any) string {
			return stemOf(decodeBase(v, opts))
		},

		"fileExt": func(v any) string {
			return decodeBase(v, opts).Ext
		},

		"trimFileSortTag": func(v any) string {
			tagless := filename.Decode(note.Scalar(v), opts)
			return stemOf(tagless) + extSuffix(tagless)
		},

		"slug": func(v any) string {
			return goslug.Make(note.Scalar(v))
		},
	}
}

// FilenameOptions converts the configuration into codec options.
func FilenameOptions(cfg *config.Config) filename.Options {
	opts := filename.Options{
		SortTagChars:     cfg.Filename.SortTagChars,
		SortTagSeparator: cfg.Filename.SortTagSeparator,
		ExtraSeparator:   cfg.Filename.ExtraSeparator,
	}
	for i, open := range cfg.Filename.CopyCounterOpen {
		opts.CounterPairs = append(opts.CounterPairs, filename.CounterPair{
			Open:  open,
			Close: cfg.Filename.CopyCounterClose[i],
		})
	}
	return opts
}

// forbiddenRunes are the characters no portable filesystem accepts in a
// filename.
const forbiddenRunes = `/\:*?"<>|`

// reservedNames are Windows device names a filename stem must not equal.
var reservedNames = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[1-9]|lpt[1-9])$`)

// Sanitize maps front-matter field content into a filesystem-safe string:
// whitespace is trimmed and collapsed, forbidden characters become spaces,
// the result is truncated to max runes and stripped of trailing dots.
func Sanitize(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(forbiddenRunes, r) || r < 0x20 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if max > 0 {
		runes := []rune(out)
		if len(runes) > max {
			out = strings.TrimSpace(string(runes[:max]))
		}
	}
	out = strings.TrimRight(out, ". ")

	if reservedNames.MatchString(out) {
		out += "-"
	}
	return out
}

// Heading returns the first non-empty line of a block of text, stripped of
// leading markup markers, so a title can be synthesized from free-form
// clipboard text.
func Heading(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimLeft(line, "#>*+- \t")
		line = strings.TrimRight(strings.TrimSpace(line), "#= ")
		if line != "" {
			return line
		}
	}
	return ""
}

func firstLine(s string, max int) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > max {
		s = string(runes[:max])
	}
	return strings.TrimSpace(s)
}

// ToYAML serializes a value as YAML under the given key. Scalars render as
// a single line with the value padded out to the pad column for visual
// alignment; compound values render as an indented block.
func ToYAML(key string, pad int, v any) (string, error) {
	left := key + ":"

	if isCompoundValue(v) {
		out, err := yaml.Marshal(map[string]any{key: v})
		if err != nil {
			return "", fmt.Errorf("toYaml: %w", err)
		}
		return strings.TrimRight(string(out), "\n"), nil
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("toYaml: %w", err)
	}
	val := strings.TrimRight(string(out), "\n")

	// The emitter folds long scalars at a fixed width; a header field must
	// stay on its line, so wrapped strings are re-emitted double-quoted.
	if strings.ContainsRune(val, '\n') {
		if s, ok := v.(string); ok {
			val = strconv.Quote(s)
		}
	}

	for len(left) < pad {
		left += " "
	}
	return left + " " + val, nil
}

// ToYAMLMap serializes a whole field mapping as top-level YAML lines, so a
// template can forward the keys it did not consume. An empty mapping
// renders as nothing.
func ToYAMLMap(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("toYamlMap: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func isCompoundValue(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}

// rstLink matches a reStructuredText hyperlink `text <dest>`_ (or the
// anonymous `text <dest>`__ form).
var rstLink = regexp.MustCompile("`([^`<]*)<([^`>]+)>`__?")

// extractLink returns the parts of the single hyperlink contained in s.
// ok is false when s holds no link or more than one; the filters then
// degrade to the empty string.
func extractLink(s string) (text, dest, title string, ok bool) {
	source := []byte(s)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	count := 0
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch link := n.(type) {
		case *gmast.Link:
			count++
			text = nodeText(link, source)
			dest = string(link.Destination)
			title = string(link.Title)
		case *gmast.AutoLink:
			count++
			url := string(link.URL(source))
			text, dest, title = url, url, ""
		}
		return gmast.WalkContinue, nil
	})

	if count == 1 {
		return text, dest, title, true
	}
	if count > 1 {
		return "", "", "", false
	}

	// Markdown found nothing; try the reStructuredText form.
	if matches := rstLink.FindAllStringSubmatch(s, -1); len(matches) == 1 {
		return strings.TrimSpace(matches[0][1]), strings.TrimSpace(matches[0][2]), "", true
	}

	return "", "", "", false
}

// nodeText flattens the visible text of an inline node, following nested
// emphasis and code spans.
func nodeText(n gmast.Node, source []byte) string {
	var b bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, source))
		}
	}
	return b.String()
}

func decodeBase(v any, opts filename.Options) filename.Parts {
	return filename.Decode(filepath.Base(note.Scalar(v)), opts)
}

func stemOf(p filename.Parts) string {
	if p.Subtitle != "" {
		return p.Title + filename.StemSeparator + p.Subtitle
	}
	return p.Title
}

func extSuffix(p filename.Parts) string {
	if p.Ext == "" {
		return ""
	}
	return "." + p.Ext
}

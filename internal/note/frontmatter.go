// Package note handles the structured header embedded at the start of a
// note's content: parsing it, validating it against the declarative
// predicate table, and coercing it into Metadata for the filename template.
package note

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plumenote/plume/internal/dates"
)

// Marker delimits the front-matter block.
const Marker = "---"

// FrontMatter is a parsed header: the raw field mapping (unknown keys
// preserved verbatim for template forwarding) plus the remaining body.
type FrontMatter struct {
	Fields map[string]any
	Body   string
}

// Parse extracts the front matter from note content. found is false when
// the content has no header (or an unclosed one); the body is then the
// whole content.
func Parse(content string) (fm FrontMatter, found bool, err error) {
	fm.Body = content

	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Marker {
		return fm, false, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Marker {
			end = i
			break
		}
	}
	if end == -1 {
		return fm, false, nil
	}

	header := strings.Join(lines[1:end], "\n")

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
		return fm, false, fmt.Errorf("failed to parse front matter as YAML: %w", err)
	}
	// An empty or comment-only header still counts as front matter.
	if fields == nil {
		fields = map[string]any{}
	}

	fm.Fields = fields
	fm.Body = strings.Join(lines[end+1:], "\n")
	return fm, true, nil
}

// Metadata is the recognized, coerced view of a front matter. It lives for
// a single synchronization: rendered or parsed, consumed by the filename
// template, then discarded.
type Metadata struct {
	Title    string
	Subtitle string
	Author   string
	Date     string
	Lang     string
	SortTag  string
	FileExt  string

	// Extra holds the unrecognized keys, preserved verbatim.
	Extra map[string]any
}

// FromFields coerces a parsed field mapping into Metadata. It assumes the
// mapping already passed Validate; coercion here is lenient.
func FromFields(fields map[string]any) Metadata {
	md := Metadata{Extra: make(map[string]any)}
	for key, value := range fields {
		switch key {
		case "title":
			md.Title = Scalar(value)
		case "subtitle":
			md.Subtitle = Scalar(value)
		case "author":
			md.Author = Scalar(value)
		case "date":
			md.Date = Scalar(value)
		case "lang":
			md.Lang = Scalar(value)
		case "sort_tag":
			md.SortTag = Scalar(value)
		case "file_ext":
			md.FileExt = Scalar(value)
		default:
			md.Extra[key] = value
		}
	}
	return md
}

// Map flattens the metadata back into a template-visible field mapping:
// recognized fields as coerced strings, extras preserved verbatim. The
// filename template reads this under the fm key.
func (m Metadata) Map() map[string]any {
	fields := map[string]any{
		"title":    m.Title,
		"subtitle": m.Subtitle,
		"author":   m.Author,
		"date":     m.Date,
		"lang":     m.Lang,
		"sort_tag": m.SortTag,
		"file_ext": m.FileExt,
	}
	for key, value := range m.Extra {
		fields[key] = value
	}
	return fields
}

// Scalar renders a front-matter value as a plain string. YAML dates come
// back as time.Time and numbers as int/float64; both are flattened to the
// textual form templates and filenames expect.
func Scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(dates.DateLayout)
	default:
		return fmt.Sprintf("%v", val)
	}
}

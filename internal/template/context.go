// Package template provides the variable registry and the two renders every
// synchronization performs: note content (front matter + body) and the
// candidate filename.
package template

import (
	"os"
	"os/user"
	"time"

	"github.com/plumenote/plume/internal/config"
	"github.com/plumenote/plume/internal/dates"
	"github.com/plumenote/plume/internal/filename"
	"github.com/plumenote/plume/internal/lingo"
	"github.com/plumenote/plume/internal/note"
)

// Context is the variable registry: an ordered-by-name mapping from
// variable names to scalar or structured values. It is built fresh per
// synchronization and never mutated concurrently.
type Context map[string]any

// NewContext assembles the registry from the environment: username,
// language, current date, and the configured default extension. Every key
// the default templates reference is present, at worst empty.
func NewContext(cfg *config.Config, now time.Time) Context {
	return Context{
		"username":  Username(),
		"lang":      lingo.FromEnv(cfg.Language.Default),
		"date":      now.Format(dates.DateLayout),
		"datetime":  now.Format(dates.DatetimeLayout),
		"sort_tag":  now.Format(dates.SortTagLayout),
		"year":      now.Format("2006"),
		"month":     now.Format("01"),
		"day":       now.Format("02"),
		"weekday":   now.Weekday().String(),
		"extension": cfg.Extensions.Default,
		"title":     "",
		"subtitle":  "",
		"path":      "",
		"dir_path":  "",
		"txt":       "",
		"txt_body":  "",
		"txt_fm":    map[string]any{},
		"fm":        map[string]any{},
	}
}

// WithText injects piped or clipboard text: the raw text, its body, and
// any front matter the text itself carries.
func (c Context) WithText(text string) Context {
	c["txt"] = text
	c["txt_body"] = text

	if fm, found, err := note.Parse(text); err == nil && found {
		c["txt_fm"] = fm.Fields
		c["txt_body"] = fm.Body
	}
	return c
}

// WithFile injects the path variables of the note being synchronized. The
// file's decoded sort tag and extension become the fallbacks the filename
// template reads when the front matter does not override them. The sort
// tag is taken over even when empty: an existing untagged note must not
// inherit the date tag meant for new notes.
func (c Context) WithFile(base, dir string, parts filename.Parts) Context {
	c["path"] = base
	c["dir_path"] = dir
	c["sort_tag"] = parts.SortTag
	if parts.Ext != "" {
		c["extension"] = parts.Ext
	}
	return c
}

// WithFrontMatter re-injects the metadata produced by the content render
// (or parsed from an existing header) under the fm key, so the filename
// template can read the just-rendered title. Coercion of numbers and dates
// to their textual form happens here, in one place, via Metadata.
func (c Context) WithFrontMatter(md note.Metadata) Context {
	c["fm"] = md.Map()
	return c
}

// Username returns the OS user name, falling back to the USER/USERNAME
// environment variables.
func Username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// Package filename implements the reversible codec between a note filename
// and its logical parts: an optional sort tag, a title/subtitle stem, a
// copy counter, and the file extension.
//
// Encode and Decode are inverses modulo separator normalization: a sort
// tag's trailing separator is never retained in the decoded tag, and a
// copy counter of 0 is equivalent to no counter at all.
package filename

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// StemSeparator splits a filename stem into title and subtitle.
const StemSeparator = "--"

// Parts are the logical components of a note filename.
type Parts struct {
	// SortTag orders the file in directory listings. It carries no
	// semantic meaning beyond lexicographic order.
	SortTag string

	// Title is the stem up to the last "--".
	Title string

	// Subtitle is the stem after the last "--", if any.
	Subtitle string

	// Counter disambiguates otherwise-colliding filenames. nil means no
	// counter is present.
	Counter *uint

	// Ext is the file extension without the leading dot.
	Ext string
}

// CounterPair is one bracket alternative recognized around a copy counter.
// An empty Close matches a bare trailing counter like "-2".
type CounterPair struct {
	Open  string
	Close string
}

// Options configure the codec. They come from the [filename] section of
// the configuration and are read-only to this package.
type Options struct {
	SortTagChars     string
	SortTagSeparator string
	ExtraSeparator   string
	CounterPairs     []CounterPair
}

// DecodeError reports a filename whose extension is not recognized.
// Callers recover by treating the whole stem as the title.
type DecodeError struct {
	Name string
	Ext  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("filename %q: unrecognized extension %q", e.Name, e.Ext)
}

// Decode splits a filename (no directory component) into its Parts.
// It is total: any string decodes to something, at worst a bare title.
func Decode(name string, o Options) Parts {
	var p Parts

	stem := name
	if i := strings.LastIndex(stem, "."); i > 0 && i < len(stem)-1 {
		p.Ext = stem[i+1:]
		stem = stem[:i]
	}

	stem, p.Counter = splitCounter(stem, o.CounterPairs)
	p.SortTag, stem = splitSortTag(stem, o)

	if i := strings.LastIndex(stem, StemSeparator); i >= 0 {
		p.Title = stem[:i]
		p.Subtitle = stem[i+len(StemSeparator):]
	} else {
		p.Title = stem
	}

	return p
}

// DecodeKnown decodes name and additionally checks the extension against
// the recognized list. The Parts are returned even on error so callers can
// fall back to them.
func DecodeKnown(name string, o Options, known []string) (Parts, error) {
	p := Decode(name, o)
	for _, ext := range known {
		if strings.EqualFold(p.Ext, ext) {
			return p, nil
		}
	}
	return p, &DecodeError{Name: name, Ext: p.Ext}
}

// Encode composes a filename from its Parts, re-inserting the extra
// separator only where leaving it out would make Decode ambiguous.
func Encode(p Parts, o Options) string {
	stem := p.Title
	if p.Subtitle != "" {
		stem += StemSeparator + p.Subtitle
	}

	var b strings.Builder
	b.WriteString(JoinTag(p.SortTag, stem, o))

	if p.Counter != nil && len(o.CounterPairs) > 0 {
		pair := o.CounterPairs[0]
		b.WriteString(pair.Open)
		b.WriteString(strconv.FormatUint(uint64(*p.Counter), 10))
		b.WriteString(pair.Close)
	}

	if p.Ext != "" {
		b.WriteString(".")
		b.WriteString(p.Ext)
	}

	return b.String()
}

// JoinTag prefixes stem with the sort tag and its separator. The extra
// separator is inserted whenever the naive concatenation would not decode
// back to the same tag and stem.
func JoinTag(tag, stem string, o Options) string {
	prefix := ""
	if tag != "" {
		prefix = tag + o.SortTagSeparator
	}

	candidate := prefix + stem
	gotTag, gotStem := splitSortTag(candidate, o)
	if gotTag == tag && gotStem == stem {
		return candidate
	}
	if o.ExtraSeparator == "" {
		return candidate
	}
	return prefix + o.ExtraSeparator + stem
}

// SameNote reports whether two decoded filenames refer to the same note.
// Copy counters are deliberately ignored, as is surrounding whitespace.
func SameNote(a, b Parts) bool {
	eq := func(x, y string) bool { return strings.TrimSpace(x) == strings.TrimSpace(y) }
	return eq(a.SortTag, b.SortTag) &&
		eq(a.Title, b.Title) &&
		eq(a.Subtitle, b.Subtitle) &&
		strings.EqualFold(strings.TrimSpace(a.Ext), strings.TrimSpace(b.Ext))
}

// HasOnlyTagChars reports whether s consists entirely of sort-tag
// characters.
func HasOnlyTagChars(s string, o Options) bool {
	for _, r := range s {
		if !strings.ContainsRune(o.SortTagChars, r) {
			return false
		}
	}
	return true
}

// splitSortTag scans the leading sort-tag character run. When a separator
// is configured the run is only accepted as a tag if the separator
// terminates it (inside or immediately after the run); the separator is
// not retained.
func splitSortTag(stem string, o Options) (tag, rest string) {
	i := 0
	for i < len(stem) {
		r, size := utf8.DecodeRuneInString(stem[i:])
		if !strings.ContainsRune(o.SortTagChars, r) {
			break
		}
		i += size
	}

	run := stem[:i]
	rest = stem[i:]

	sep := o.SortTagSeparator
	switch {
	case run == "":
		// An empty tag can still have been disambiguated on encode.
		if o.ExtraSeparator != "" && strings.HasPrefix(stem, o.ExtraSeparator) {
			return "", stem[len(o.ExtraSeparator):]
		}
		return "", stem
	case sep == "":
		tag = run
	case strings.HasSuffix(run, sep):
		tag = run[:len(run)-len(sep)]
	case strings.HasPrefix(rest, sep):
		tag = run
		rest = rest[len(sep):]
	default:
		return "", stem
	}

	if o.ExtraSeparator != "" {
		rest = strings.TrimPrefix(rest, o.ExtraSeparator)
	}
	return tag, rest
}

// splitCounter strips a trailing copy counter, trying the configured
// bracket pairs as ordered alternatives. First match wins.
func splitCounter(stem string, pairs []CounterPair) (string, *uint) {
	for _, pair := range pairs {
		if pair.Open == "" {
			continue // an unanchored counter would eat numeric titles
		}

		body := stem
		if pair.Close != "" {
			if !strings.HasSuffix(body, pair.Close) {
				continue
			}
			body = body[:len(body)-len(pair.Close)]
		}

		digits := 0
		for digits < len(body) && unicode.IsDigit(rune(body[len(body)-1-digits])) {
			digits++
		}
		if digits == 0 {
			continue
		}

		numStart := len(body) - digits
		if !strings.HasSuffix(body[:numStart], pair.Open) {
			continue
		}

		n, err := strconv.ParseUint(body[numStart:], 10, 32)
		if err != nil {
			continue
		}
		counter := uint(n)
		return body[:numStart-len(pair.Open)], &counter
	}
	return stem, nil
}

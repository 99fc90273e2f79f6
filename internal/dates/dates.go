// Package dates provides the canonical date layouts shared by the variable
// registry, front-matter coercion, and templates.
package dates

const (
	// DateLayout is the YYYY-MM-DD form used in front matter.
	DateLayout = "2006-01-02"

	// SortTagLayout is the compact YYYYMMDD form used as the default
	// filename sort tag.
	SortTagLayout = "20060102"

	// DatetimeLayout is the minute-precision form used in templates.
	DatetimeLayout = "2006-01-02T15:04"
)

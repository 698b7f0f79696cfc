package media

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Field bounds applied by every adapter.
const (
	MaxSynopsis    = 220
	MaxGenres      = 4
	MaxAttribution = 60
	MaxResults     = 15
)

// Id prefixes. Each catalog owns exactly one, which keeps ids from different catalogs disjoint.
const (
	PrefixAniList     = "al"
	PrefixTMDB        = "tmdb"
	PrefixOpenLibrary = "ol"
	PrefixIGDB        = "igdb"
	PrefixSteam       = "steam"
	PrefixComicVine   = "cv"
)

// ID joins a catalog prefix and the remaining parts with dashes, e.g. ID("al", "anime", 1) is "al-anime-1".
func ID(prefix string, parts ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range parts {
		b.WriteByte('-')
		fmt.Fprint(&b, part)
	}
	return b.String()
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// StripMarkup removes HTML tags, decodes entities and collapses whitespace.
func StripMarkup(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Synopsis strips markup and applies the synopsis bound.
func Synopsis(s string) string {
	return Truncate(StripMarkup(s), MaxSynopsis)
}

// Genres drops blanks and keeps the first MaxGenres names in order.
func Genres(names []string) []string {
	names = lo.Filter(names, func(name string, _ int) bool {
		return strings.TrimSpace(name) != ""
	})
	if len(names) > MaxGenres {
		names = names[:MaxGenres]
	}
	if names == nil {
		return []string{}
	}
	return names
}

// Attribution joins non-empty names with commas and applies the attribution bound.
func Attribution(names ...string) string {
	names = lo.Filter(names, func(name string, _ int) bool {
		return strings.TrimSpace(name) != ""
	})
	return Truncate(strings.Join(names, ", "), MaxAttribution)
}

// Rescale maps value from a 0..nativeMax scale onto 0..10 with one decimal.
// Zero or negative values mean the catalog has no score and yield nil.
func Rescale(value, nativeMax float64) *float64 {
	if value <= 0 || nativeMax <= 0 {
		return nil
	}
	scaled := math.Round(value/nativeMax*100) / 10
	return &scaled
}

// Year keeps the leading four digits of a date such as 2019-04-01.
func Year(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// Capped limits a result list to MaxResults.
func Capped(records []Record) []Record {
	if len(records) > MaxResults {
		return records[:MaxResults]
	}
	return records
}

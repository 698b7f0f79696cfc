package library

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// SortBy selects the order of Sorted.
type SortBy string

const (
	SortAdded  SortBy = "added"
	SortRating SortBy = "rating"
	SortTitle  SortBy = "title"
)

// matchThreshold is the lowest Jaro-Winkler similarity Match accepts.
const matchThreshold = 0.85

// Sorted returns every entry, newest first by default.
// Rating order puts the highest rated first and breaks ties by recency.
func (s *Store) Sorted(by SortBy) []media.Entry {
	entries := s.Entries()

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch by {
		case SortRating:
			if a.UserRating != b.UserRating {
				return a.UserRating > b.UserRating
			}
		case SortTitle:
			if at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title); at != bt {
				return at < bt
			}
		}
		if a.AddedAt != b.AddedAt {
			return a.AddedAt > b.AddedAt
		}
		return a.ID < b.ID
	})

	return entries
}

// Filter returns the entries, newest first, with the given status and type.
// An empty status and media.TypeAll match everything.
func (s *Store) Filter(status media.Status, t media.Type) []media.Entry {
	return lo.Filter(s.Sorted(SortAdded), func(e media.Entry, _ int) bool {
		return (status == "" || e.UserStatus == status) &&
			(t == "" || t == media.TypeAll || e.Type == t)
	})
}

// Stats counts entries per status. Every status is present.
func (s *Store) Stats() map[media.Status]int {
	stats := lo.SliceToMap(media.Statuses, func(st media.Status) (media.Status, int) {
		return st, 0
	})

	for _, e := range s.Entries() {
		stats[e.UserStatus]++
	}

	return stats
}

// Match finds the entry referred to by an id or a title typed by the user.
// Titles are compared with Jaro-Winkler and the closest one above the threshold wins.
func (s *Store) Match(ref string) mo.Option[media.Entry] {
	if entry, ok := s.Get(ref).Get(); ok {
		return mo.Some(entry)
	}

	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return mo.None[media.Entry]()
	}

	var (
		best  media.Entry
		score float64
	)

	for _, e := range s.Sorted(SortAdded) {
		for _, title := range []string{e.Title, e.TitleEn} {
			if title == "" {
				continue
			}

			similarity := strutil.Similarity(ref, strings.ToLower(title), metrics.NewJaroWinkler())
			if similarity > score {
				best, score = e, similarity
			}
		}
	}

	if score < matchThreshold {
		return mo.None[media.Entry]()
	}

	return mo.Some(best)
}

// Fuzzy returns the entries whose title fuzzily matches pattern, best match first.
func (s *Store) Fuzzy(pattern string) []media.Entry {
	entries := s.Sorted(SortAdded)
	if strings.TrimSpace(pattern) == "" {
		return entries
	}

	titles := lo.Map(entries, func(e media.Entry, _ int) string {
		return strings.ToLower(e.Title)
	})

	return lo.Map(fuzzy.Find(strings.ToLower(pattern), titles), func(m fuzzy.Match, _ int) media.Entry {
		return entries[m.Index]
	})
}

// Package media defines the normalized catalog record and the user-owned library entry built on it.
package media

import (
	"fmt"
	"strings"
	"time"
)

// Type is a media category. Values match what is persisted in the library.
type Type string

const (
	TypeAll         Type = "all"
	TypeAnime       Type = "anime"
	TypeManga       Type = "manga"
	TypeManhwa      Type = "manhwa"
	TypeLightNovels Type = "lightnovels"
	TypeSeries      Type = "series"
	TypeMovies      Type = "filmes"
	TypeGames       Type = "jogos"
	TypeBooks       Type = "livros"
	TypeComics      Type = "comics"
)

// Types lists every concrete type, excluding the TypeAll selector.
var Types = []Type{
	TypeAnime, TypeManga, TypeManhwa, TypeLightNovels,
	TypeSeries, TypeMovies, TypeGames, TypeBooks, TypeComics,
}

var typeAliases = map[string]Type{
	"movies":       TypeMovies,
	"movie":        TypeMovies,
	"films":        TypeMovies,
	"tv":           TypeSeries,
	"games":        TypeGames,
	"game":         TypeGames,
	"books":        TypeBooks,
	"book":         TypeBooks,
	"light-novels": TypeLightNovels,
	"ln":           TypeLightNovels,
	"comic":        TypeComics,
	"*":            TypeAll,
}

// ParseType accepts a persisted type value or a common English alias.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == string(TypeAll) {
		return TypeAll, nil
	}

	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}

	if t, ok := typeAliases[s]; ok {
		return t, nil
	}

	return "", fmt.Errorf("unknown media type %q", s)
}

// Status is the user's progress with a library entry.
type Status string

const (
	StatusInProgress Status = "assistindo"
	StatusCompleted  Status = "completo"
	StatusPlanned    Status = "planejado"
	StatusDropped    Status = "dropado"
	StatusPaused     Status = "pausado"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusInProgress, StatusCompleted, StatusPlanned, StatusDropped, StatusPaused}

var statusAliases = map[string]Status{
	"watching":    StatusInProgress,
	"reading":     StatusInProgress,
	"playing":     StatusInProgress,
	"in-progress": StatusInProgress,
	"completed":   StatusCompleted,
	"done":        StatusCompleted,
	"planned":     StatusPlanned,
	"plan":        StatusPlanned,
	"dropped":     StatusDropped,
	"paused":      StatusPaused,
	"on-hold":     StatusPaused,
}

// ParseStatus accepts a persisted status value or a common English alias.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}

	if st, ok := statusAliases[s]; ok {
		return st, nil
	}

	return "", fmt.Errorf("unknown status %q", s)
}

// Label is the English name shown in the CLI.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	case StatusPlanned:
		return "planned"
	case StatusDropped:
		return "dropped"
	case StatusPaused:
		return "paused"
	default:
		return string(s)
	}
}

// Record is one catalog item as normalized by an adapter. It is never modified after it is produced.
type Record struct {
	ID            string   `json:"id" jsonschema:"description=Provider-namespaced id such as al-anime-1 or tmdb-filmes-550"`
	Title         string   `json:"title"`
	TitleEn       string   `json:"titleEn,omitempty"`
	Cover         string   `json:"cover"`
	CoverFallback string   `json:"coverFallback,omitempty"`
	Backdrop      string   `json:"backdrop,omitempty"`
	Type          Type     `json:"type"`
	Year          string   `json:"year"`
	Score         *float64 `json:"score" jsonschema:"minimum=0,maximum=10"`
	Synopsis      string   `json:"synopsis"`
	Genres        []string `json:"genres"`
	Extra         string   `json:"extra"`
	Source        string   `json:"source,omitempty"`
	Platforms     string   `json:"platforms,omitempty"`
	SteamAppID    string   `json:"steamAppId,omitempty"`
}

// Entry is a Record tracked in a user's library.
type Entry struct {
	Record
	UserStatus  Status  `json:"userStatus"`
	UserRating  float64 `json:"userRating"`
	AddedAt     int64   `json:"addedAt"`
	CustomCover string  `json:"customCover,omitempty"`
}

// DisplayCover prefers the user's override, then the catalog cover, then the fallback image.
func (e Entry) DisplayCover() string {
	switch {
	case e.CustomCover != "":
		return e.CustomCover
	case e.Cover != "":
		return e.Cover
	default:
		return e.CoverFallback
	}
}

// Added returns AddedAt as a time.
func (e Entry) Added() time.Time {
	return time.UnixMilli(e.AddedAt)
}

// Rated reports whether the user assigned a rating.
func (e Entry) Rated() bool {
	return e.UserRating != 0
}

// Favorite is the short summary kept in the favorites list.
type Favorite struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cover string `json:"cover"`
	Type  Type   `json:"type"`
}

// Favorite summarizes a record for the favorites list.
func (r Record) Favorite() Favorite {
	return Favorite{ID: r.ID, Title: r.Title, Cover: r.Cover, Type: r.Type}
}

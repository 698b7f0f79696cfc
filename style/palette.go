package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/media"
)

var statusColors = map[media.Status]lipgloss.Color{
	media.StatusInProgress: color.Sapphire,
	media.StatusCompleted:  color.Mint,
	media.StatusPlanned:    color.Lavender,
	media.StatusDropped:    color.Rose,
	media.StatusPaused:     color.Peach,
}

var typeColors = map[media.Type]lipgloss.Color{
	media.TypeAnime:       color.Mauve,
	media.TypeManga:       color.Sky,
	media.TypeManhwa:      color.Sky,
	media.TypeLightNovels: color.Sky,
	media.TypeSeries:      color.Sapphire,
	media.TypeMovies:      color.Peach,
	media.TypeGames:       color.Mint,
	media.TypeBooks:       color.Sand,
	media.TypeComics:      color.Rose,
}

func lookup[K comparable](colors map[K]lipgloss.Color, k K) lipgloss.Color {
	if c, ok := colors[k]; ok {
		return c
	}
	return color.Overlay
}

// Status renders a status label in its color.
func Status(s media.Status) string {
	return Fg(lookup(statusColors, s))(s.Label())
}

// Type renders a media type as a small tag.
func Type(t media.Type) string {
	return Fg(lookup(typeColors, t))("[" + string(t) + "]")
}

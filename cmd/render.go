package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/mcmeskajr-prog/trackall/util"
	"github.com/samber/lo"
)

func score(s *float64) string {
	if s == nil {
		return ""
	}
	return style.Fg(color.Yellow)(fmt.Sprintf("%s %.1f", icon.Get(icon.Star), *s))
}

// printRecord writes one numbered result. Records already tracked are marked.
func printRecord(w io.Writer, n int, r media.Record, tracked bool) {
	parts := []string{
		style.Faint(fmt.Sprintf("%2d.", n)),
		style.Bold(r.Title),
	}
	if r.Year != "" {
		parts = append(parts, style.Faint("("+r.Year+")"))
	}
	parts = append(parts, style.Type(r.Type))
	if s := score(r.Score); s != "" {
		parts = append(parts, s)
	}
	if tracked {
		parts = append(parts, style.Fg(color.Green)(icon.Get(icon.Success)))
	}

	_, _ = fmt.Fprintln(w, strings.Join(parts, " "))

	details := lo.Compact([]string{r.Extra, strings.Join(r.Genres, ", "), r.Platforms, r.Source})
	if len(details) > 0 {
		_, _ = fmt.Fprintln(w, util.Wrap(style.Italic(strings.Join(details, " · ")), util.TerminalWidth(), 4))
	}
	if r.Synopsis != "" {
		_, _ = fmt.Fprintln(w, style.Faint(util.Wrap(r.Synopsis, util.TerminalWidth(), 4)))
	}
}

// printEntry writes one library line.
func printEntry(w io.Writer, e media.Entry) {
	parts := []string{
		style.Status(e.UserStatus),
		style.Bold(e.Title),
		style.Type(e.Type),
	}
	if e.Rated() {
		parts = append(parts, style.Fg(color.Yellow)(fmt.Sprintf("%s %g/10", icon.Get(icon.Star), e.UserRating)))
	}
	parts = append(parts, style.Faint(e.ID))

	_, _ = fmt.Fprintln(w, strings.Join(parts, " "))
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

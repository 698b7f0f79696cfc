package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/mcmeskajr-prog/trackall/trending"
	"github.com/mcmeskajr-prog/trackall/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// trendingOrder is the display order of the board.
var trendingOrder = []media.Type{media.TypeAnime, media.TypeManga, media.TypeMovies, media.TypeSeries, media.TypeGames}

func init() {
	rootCmd.AddCommand(trendingCmd)

	trendingCmd.Flags().StringP("type", "t", string(media.TypeAll), "Only show this media type")
	trendingCmd.Flags().IntP("limit", "l", 10, "Show at most this many titles per type")
	trendingCmd.Flags().BoolP("json", "j", false, "Print the board as JSON")
	trendingCmd.Flags().Bool("tracked", false, "Include titles already in the library")
	lo.Must0(trendingCmd.RegisterFlagCompletionFunc("type", completionTypes))

	trendingCmd.SetOut(os.Stdout)
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show what is popular right now",
	Run: func(cmd *cobra.Command, args []string) {
		t, err := media.ParseType(lo.Must(cmd.Flags().GetString("type")))
		handleErr(err)

		var (
			limit   = lo.Must(cmd.Flags().GetInt("limit"))
			tracked = lo.Must(cmd.Flags().GetBool("tracked"))
		)

		withSession(func(ctx context.Context, s *session.Session) error {
			erase := util.PrintErasable(fmt.Sprintf("%s Fetching trending titles...", icon.Get(icon.Progress)))
			board := s.Trending.Fetch(ctx, s.Keys())
			erase()

			shown := make(trending.Board)
			for _, class := range trendingOrder {
				if t != media.TypeAll && t != class {
					continue
				}

				records := board[class]
				if !tracked {
					records = lo.Filter(records, func(r media.Record, _ int) bool {
						return s.Library.Get(r.ID).IsAbsent()
					})
				}
				if limit > 0 && len(records) > limit {
					records = records[:limit]
				}
				shown[class] = records
			}

			if lo.Must(cmd.Flags().GetBool("json")) {
				return printJSON(cmd.OutOrStdout(), shown)
			}

			for _, class := range trendingOrder {
				records, ok := shown[class]
				if !ok {
					continue
				}

				cmd.Println(style.Title(util.Capitalize(string(class))))
				if len(records) == 0 {
					cmd.Println(style.Faint("  nothing to show"))
				}
				for i, r := range records {
					printRecord(cmd.OutOrStdout(), i+1, r, false)
				}
				cmd.Println()
			}

			return nil
		})
	},
}

package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/library"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(favoritesCmd)

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesListCmd.Flags().BoolP("json", "j", false, "Print favorites as JSON")
	favoritesListCmd.SetOut(os.Stdout)

	favoritesCmd.AddCommand(favoritesToggleCmd)
	favoritesToggleCmd.SetOut(os.Stdout)
}

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Pin up to five titles",
}

var favoritesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List favorites",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			favorites := s.Library.Favorites()

			if lo.Must(cmd.Flags().GetBool("json")) {
				return printJSON(cmd.OutOrStdout(), favorites)
			}

			if len(favorites) == 0 {
				cmd.Println(style.Faint("no favorites yet"))
				return nil
			}

			heart := style.Fg(color.Red)(icon.Get(icon.Heart))
			for _, f := range favorites {
				cmd.Printf("%s %s %s %s\n", heart, style.Bold(f.Title), style.Type(f.Type), style.Faint(f.ID))
			}
			return nil
		})
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <id or title>",
	Short: "Add a tracked title to the favorites, or remove it",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref := strings.Join(args, " ")

		withSession(func(ctx context.Context, s *session.Session) error {
			// A favorite no longer in the library can still be removed by id.
			record, found := lo.Find(s.Library.Favorites(), func(f media.Favorite) bool {
				return f.ID == ref
			})

			var target media.Record
			if found {
				target = media.Record{ID: record.ID, Title: record.Title, Cover: record.Cover, Type: record.Type}
			} else {
				entry, err := resolve(s, ref)
				if err != nil {
					return err
				}
				target = entry.Record
			}

			added, err := s.Library.ToggleFavorite(target)
			if errors.Is(err, library.ErrFavoritesFull) {
				return errors.New("you already have five favorites, remove one first")
			}
			if err != nil {
				return err
			}

			done(cmd, "%s %s", style.Bold(target.Title), lo.Ternary(added, "pinned", "unpinned"))
			return nil
		})
	},
}

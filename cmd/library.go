package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/library"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/open"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/mcmeskajr-prog/trackall/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(libraryCmd)
}

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage the titles you track",
}

// resolve finds the entry a user refers to by id or by title.
func resolve(s *session.Session, ref string) (media.Entry, error) {
	entry, ok := s.Library.Match(ref).Get()
	if !ok {
		return media.Entry{}, fmt.Errorf("nothing in your library matches %q", ref)
	}
	return entry, nil
}

// checkRating accepts finite ratings within the scale.
func checkRating(rating float64) error {
	if !library.ValidRating(rating) || rating < 0 || rating > library.MaxRating {
		return fmt.Errorf("rating must be a number between 0 and %d", library.MaxRating)
	}
	return nil
}

func done(cmd *cobra.Command, format string, args ...any) {
	cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)

	libraryListCmd.Flags().StringP("status", "s", "", "Only show entries with this status")
	libraryListCmd.Flags().StringP("type", "t", string(media.TypeAll), "Only show entries of this type")
	libraryListCmd.Flags().StringP("sort", "o", string(library.SortAdded), "Order by added, rating or title")
	libraryListCmd.Flags().StringP("filter", "f", "", "Fuzzy filter titles")
	libraryListCmd.Flags().BoolP("json", "j", false, "Print entries as JSON")
	lo.Must0(libraryListCmd.RegisterFlagCompletionFunc("status", completionStatuses))
	lo.Must0(libraryListCmd.RegisterFlagCompletionFunc("type", completionTypes))

	libraryListCmd.SetOut(os.Stdout)
}

var libraryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked titles",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			status media.Status
			err    error
		)
		if raw := lo.Must(cmd.Flags().GetString("status")); raw != "" {
			status, err = media.ParseStatus(raw)
			handleErr(err)
		}

		t, err := media.ParseType(lo.Must(cmd.Flags().GetString("type")))
		handleErr(err)

		withSession(func(ctx context.Context, s *session.Session) error {
			var entries []media.Entry
			if pattern := lo.Must(cmd.Flags().GetString("filter")); pattern != "" {
				entries = s.Library.Fuzzy(pattern)
			} else {
				entries = s.Library.Sorted(library.SortBy(lo.Must(cmd.Flags().GetString("sort"))))
			}

			entries = lo.Filter(entries, func(e media.Entry, _ int) bool {
				return (status == "" || e.UserStatus == status) && (t == media.TypeAll || e.Type == t)
			})

			if lo.Must(cmd.Flags().GetBool("json")) {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			if len(entries) == 0 {
				cmd.Println(style.Faint("nothing here yet"))
				return nil
			}

			for _, e := range entries {
				printEntry(cmd.OutOrStdout(), e)
			}
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryAddCmd)

	libraryAddCmd.Flags().StringP("type", "t", string(media.TypeAll), "Media type to search")
	libraryAddCmd.Flags().StringP("status", "s", string(media.StatusPlanned), "Initial status")
	libraryAddCmd.Flags().Float64P("rating", "r", 0, "Initial rating from 0 to 10")
	lo.Must0(libraryAddCmd.RegisterFlagCompletionFunc("type", completionTypes))
	lo.Must0(libraryAddCmd.RegisterFlagCompletionFunc("status", completionStatuses))

	libraryAddCmd.SetOut(os.Stdout)
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Search for a title and add it",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := media.ParseType(lo.Must(cmd.Flags().GetString("type")))
		handleErr(err)

		status, err := media.ParseStatus(lo.Must(cmd.Flags().GetString("status")))
		handleErr(err)

		rating := lo.Must(cmd.Flags().GetFloat64("rating"))
		handleErr(checkRating(rating))

		withSession(func(ctx context.Context, s *session.Session) error {
			records, err := s.Router.Search(ctx, strings.Join(args, " "), t, s.Keys())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no results for %q", strings.Join(args, " "))
			}

			return pickAndAdd(cmd, s, records, status, rating)
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryRemoveCmd.SetOut(os.Stdout)
}

var libraryRemoveCmd = &cobra.Command{
	Use:     "remove <id or title>",
	Aliases: []string{"rm"},
	Short:   "Stop tracking a title",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			entry, err := resolve(s, strings.Join(args, " "))
			if err != nil {
				return err
			}

			s.Library.Remove(entry.ID)
			done(cmd, "removed %s", style.Bold(entry.Title))
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryStatusCmd)
	libraryStatusCmd.Flags().StringP("status", "s", "", "New status, asked for when omitted")
	lo.Must0(libraryStatusCmd.RegisterFlagCompletionFunc("status", completionStatuses))
	libraryStatusCmd.SetOut(os.Stdout)
}

var libraryStatusCmd = &cobra.Command{
	Use:   "status <id or title>",
	Short: "Change the status of a title",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			entry, err := resolve(s, strings.Join(args, " "))
			if err != nil {
				return err
			}

			var status media.Status
			if raw := lo.Must(cmd.Flags().GetString("status")); raw != "" {
				if status, err = media.ParseStatus(raw); err != nil {
					return err
				}
			} else {
				var index int
				err := survey.AskOne(&survey.Select{
					Message: entry.Title,
					Options: lo.Map(media.Statuses, func(s media.Status, _ int) string { return s.Label() }),
					Default: entry.UserStatus.Label(),
				}, &index)
				if err != nil {
					return err
				}
				status = media.Statuses[index]
			}

			s.Library.SetStatus(entry.ID, status)
			done(cmd, "%s is now %s", style.Bold(entry.Title), style.Status(status))
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryRateCmd)
	libraryRateCmd.SetOut(os.Stdout)
}

var libraryRateCmd = &cobra.Command{
	Use:   "rate <id or title> <0-10>",
	Short: "Rate a title, 0 clears the rating",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		rating, err := strconv.ParseFloat(args[len(args)-1], 64)
		handleErr(err)
		handleErr(checkRating(rating))

		withSession(func(ctx context.Context, s *session.Session) error {
			entry, err := resolve(s, strings.Join(args[:len(args)-1], " "))
			if err != nil {
				return err
			}

			s.Library.SetRating(entry.ID, rating)
			if rating == 0 {
				done(cmd, "cleared the rating of %s", style.Bold(entry.Title))
			} else {
				done(cmd, "rated %s %g/10", style.Bold(entry.Title), rating)
			}
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryCoverCmd)
	libraryCoverCmd.SetOut(os.Stdout)
}

var libraryCoverCmd = &cobra.Command{
	Use:   "cover <id or title> [url]",
	Short: "Override the cover of a title, or restore it when no url is given",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			entry, err := resolve(s, args[0])
			if err != nil {
				return err
			}

			url := ""
			if len(args) == 2 {
				url = args[1]
			}

			s.Library.SetCover(entry.ID, url)
			done(cmd, "cover of %s set to %s", style.Bold(entry.Title), lo.Ternary(url == "", "the catalog image", url))
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryStatsCmd)
	libraryStatsCmd.SetOut(os.Stdout)
}

var libraryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count tracked titles per status",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			stats := s.Library.Stats()

			cmd.Println(style.Title(util.Quantify(s.Library.Len(), "title", "titles")))
			for _, status := range media.Statuses {
				cmd.Printf("  %-24s %d\n", style.Status(status), stats[status])
			}
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryOpenCmd)
	libraryOpenCmd.Flags().BoolP("cover", "c", false, "Open the cover image instead of the catalog page")
	libraryOpenCmd.SetOut(os.Stdout)
}

var libraryOpenCmd = &cobra.Command{
	Use:   "open <id or title>",
	Short: "Open a title's catalog page in the browser",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			entry, err := resolve(s, strings.Join(args, " "))
			if err != nil {
				return err
			}

			url := entry.DisplayCover()
			if !lo.Must(cmd.Flags().GetBool("cover")) {
				url = provider.Page(entry.ID).OrElse(url)
			}
			if url == "" {
				return fmt.Errorf("%s has no page or cover to open", entry.Title)
			}

			cmd.Printf("%s %s\n", icon.Get(icon.Progress), style.Faint(url))
			return open.Start(url)
		})
	},
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/invopop/jsonschema"
	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/query"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/mcmeskajr-prog/trackall/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func completionTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return append([]string{string(media.TypeAll)}, lo.Map(media.Types, func(t media.Type, _ int) string {
		return string(t)
	})...), cobra.ShellCompDirectiveNoFileComp
}

func completionStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(media.Statuses, func(s media.Status, _ int) string {
		return string(s)
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("type", "t", string(media.TypeAll), "Media type to search")
	searchCmd.Flags().BoolP("json", "j", false, "Print results as JSON")
	searchCmd.Flags().Bool("schema", false, "Print the JSON schema of the results and exit")
	searchCmd.Flags().StringP("add", "a", "", "Pick a result and add it to the library with this status")
	searchCmd.Flags().IntP("limit", "l", 0, "Show at most this many results")
	lo.Must0(searchCmd.RegisterFlagCompletionFunc("type", completionTypes))
	lo.Must0(searchCmd.RegisterFlagCompletionFunc("add", completionStatuses))

	searchCmd.SetOut(os.Stdout)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalogs for a title",
	Example: "  trackall search frieren\n" +
		"  trackall search -t jogos halo --add planned",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			handleErr(printJSON(cmd.OutOrStdout(), reflector.Reflect([]media.Record{})))
			return
		}

		q := strings.Join(args, " ")
		if strings.TrimSpace(q) == "" {
			handleErr(cmd.Help())
			return
		}

		t, err := media.ParseType(lo.Must(cmd.Flags().GetString("type")))
		handleErr(err)

		var status media.Status
		if raw := lo.Must(cmd.Flags().GetString("add")); raw != "" {
			status, err = media.ParseStatus(raw)
			handleErr(err)
		}

		withSession(func(ctx context.Context, s *session.Session) error {
			erase := util.PrintErasable(fmt.Sprintf("%s Searching %s...", icon.Get(icon.Search), style.Bold(q)))
			records, err := s.Router.Search(ctx, q, t, s.Keys())
			erase()
			if err != nil {
				return err
			}

			if limit := lo.Must(cmd.Flags().GetInt("limit")); limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			if lo.Must(cmd.Flags().GetBool("json")) {
				return printJSON(cmd.OutOrStdout(), records)
			}

			if len(records) == 0 {
				cmd.Printf("%s no results for %s\n", icon.Get(icon.Fail), style.Bold(q))
				if suggestion, ok := query.Suggest(q).Get(); ok && viper.GetBool(key.SearchShowQuerySuggestions) {
					cmd.Printf("did you mean %s?\n", style.Fg(color.Yellow)(suggestion))
				}
				return nil
			}

			for i, r := range records {
				printRecord(cmd.OutOrStdout(), i+1, r, s.Library.Get(r.ID).IsPresent())
			}

			if status == "" {
				return nil
			}

			return pickAndAdd(cmd, s, records, status, 0)
		})
	},
}

// pickAndAdd asks which result to add. A single result is added without asking.
func pickAndAdd(cmd *cobra.Command, s *session.Session, records []media.Record, status media.Status, rating float64) error {
	chosen := records[0]

	if len(records) > 1 {
		options := lo.Map(records, func(r media.Record, i int) string {
			return fmt.Sprintf("%d. %s [%s]", i+1, r.Title, r.Type)
		})

		var index int
		if err := survey.AskOne(&survey.Select{
			Message: "Add which one?",
			Options: options,
		}, &index); err != nil {
			return err
		}
		chosen = records[index]
	}

	if !s.Library.Add(chosen, status, rating) {
		cmd.Printf("%s %s is already in your library\n", icon.Get(icon.Warn), style.Bold(chosen.Title))
		return nil
	}

	cmd.Printf("%s added %s as %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(chosen.Title), style.Status(status))
	return nil
}

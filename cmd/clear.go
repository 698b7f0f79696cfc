package cmd

import (
	"fmt"
	"os"

	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/util"
	"github.com/mcmeskajr-prog/trackall/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget is a file or directory the clear command can remove.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"query suggestions", "queries", mo.Some("q"), where.Queries},
	{"pending writes snapshot", "pending", mo.None[string](), where.SyncQueue},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}

	clearCmd.SetOut(os.Stdout)
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached files",
	Long: "Remove cached files.\n\n" +
		"The library itself is never touched. Clearing pending writes loses changes that have not reached storage yet.",
	Run: func(cmd *cobra.Command, args []string) {
		targets := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.argLong))
		})

		if len(targets) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range targets {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := util.Delete(target.location())
			erase()
			handleErr(err)

			done(cmd, "%s cleared", util.Capitalize(target.name))
		}
	},
}

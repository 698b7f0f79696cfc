package cmd

import (
	"os"
	"strings"

	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.SetOut(os.Stdout)
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the catalogs searched and what they serve",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range provider.Builtins() {
			types := lo.Map(p.Types, func(t media.Type, _ int) string { return style.Type(t) })
			cmd.Printf("%s %s %s", style.Bold(p.Name), style.Faint(p.Prefix+"-"), strings.Join(types, " "))
			if p.Needs != "" {
				cmd.Printf(" %s", style.Fg(color.Yellow)("needs "+p.Needs))
			}
			cmd.Println()
		}
	},
}

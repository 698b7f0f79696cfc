// Package cmd implements the command-line interface for trackall.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/constant"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/mcmeskajr-prog/trackall/search"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/mcmeskajr-prog/trackall/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd defines the entry point for the trackall application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Search every kind of media from one place and keep a synchronized library",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiPurple).Render("    - Search every kind of media from one place and keep a synchronized library"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		if hint := hintFor(err); hint != "" {
			_, _ = fmt.Fprintln(os.Stderr, style.Faint(hint))
		}
		os.Exit(1)
	}
}

// hintFor suggests a fix for errors the user can act on.
func hintFor(err error) string {
	switch {
	case provider.IsKind(err, provider.KindMissingCredential):
		return fmt.Sprintf("set it with `%s keys set`", constant.App)
	case errors.Is(err, search.ErrUnreachable):
		return "check your connection and try again"
	default:
		return ""
	}
}

// withSession opens a session, loads the owner's library and closes it after fn,
// delivering pending writes on the way out.
func withSession(fn func(ctx context.Context, s *session.Session) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := session.Open(ctx)
	handleErr(err)

	err = s.Load(ctx)
	if err == nil {
		err = fn(ctx, s)
	}

	handleErr(errors.Join(err, s.Close(context.WithoutCancel(ctx))))
}

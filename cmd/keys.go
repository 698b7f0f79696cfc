package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mcmeskajr-prog/trackall/auth"
	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func completionSecrets(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return auth.Secrets, cobra.ShellCompDirectiveNoFileComp
}

func secretArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
		return err
	}
	if !lo.Contains(auth.Secrets, args[0]) {
		return fmt.Errorf("unknown secret %s, expected one of %s", style.Fg(color.Red)(args[0]), strings.Join(auth.Secrets, ", "))
	}
	return nil
}

// mask keeps the last four characters of a secret visible.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func init() {
	rootCmd.AddCommand(keysCmd)

	keysCmd.AddCommand(keysSetCmd)
	keysSetCmd.Flags().BoolP("local", "l", false, "Keep the secret in this machine's keyring only")
	keysSetCmd.SetOut(os.Stdout)

	keysCmd.AddCommand(keysGetCmd)
	keysGetCmd.Flags().BoolP("reveal", "r", false, "Print the secret unmasked")
	keysGetCmd.SetOut(os.Stdout)

	keysCmd.AddCommand(keysDeleteCmd)
	keysDeleteCmd.SetOut(os.Stdout)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage catalog credentials",
	Long: "Manage catalog credentials.\n\n" +
		"  tmdb   API key for movies and series\n" +
		"  proxy  URL of the credentialed proxy serving games and comics",
}

var keysSetCmd = &cobra.Command{
	Use:               "set <name> [value]",
	Short:             "Store a credential",
	Args:              secretArg,
	ValidArgsFunction: completionSecrets,
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		var value string
		if len(args) > 1 {
			value = args[1]
		} else {
			handleErr(survey.AskOne(&survey.Password{Message: name}, &value, survey.WithValidator(survey.Required)))
		}
		value = strings.TrimSpace(value)

		handleErr(auth.Set(name, value))

		if lo.Must(cmd.Flags().GetBool("local")) {
			done(cmd, "%s saved to the keyring", style.Bold(name))
			return
		}

		withSession(func(ctx context.Context, s *session.Session) error {
			if err := s.SetKey(name, value); err != nil {
				return err
			}
			done(cmd, "%s saved", style.Bold(name))
			return nil
		})
	},
}

var keysGetCmd = &cobra.Command{
	Use:               "get <name>",
	Short:             "Show the credential in effect",
	Args:              secretArg,
	ValidArgsFunction: completionSecrets,
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			value := s.Key(args[0])
			if value == "" {
				cmd.Printf("%s %s is not set\n", icon.Get(icon.Warn), style.Bold(args[0]))
				return nil
			}

			if !lo.Must(cmd.Flags().GetBool("reveal")) {
				value = mask(value)
			}
			cmd.Printf("%s %s\n", icon.Get(icon.Key), value)
			return nil
		})
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:               "delete <name>",
	Aliases:           []string{"rm"},
	Short:             "Forget a credential",
	Args:              secretArg,
	ValidArgsFunction: completionSecrets,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.Delete(args[0]))

		withSession(func(ctx context.Context, s *session.Session) error {
			if err := s.SetKey(args[0], ""); err != nil {
				return err
			}
			done(cmd, "%s deleted", style.Bold(args[0]))
			return nil
		})
	},
}

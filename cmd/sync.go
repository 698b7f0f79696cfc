package cmd

import (
	"context"
	"os"
	"time"

	"github.com/mcmeskajr-prog/trackall/color"
	"github.com/mcmeskajr-prog/trackall/icon"
	"github.com/mcmeskajr-prog/trackall/internal/sync"
	"github.com/mcmeskajr-prog/trackall/session"
	"github.com/mcmeskajr-prog/trackall/style"
	"github.com/mcmeskajr-prog/trackall/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.AddCommand(syncStatusCmd)
	syncStatusCmd.Flags().BoolP("json", "j", false, "Print pending writes as JSON")
	syncStatusCmd.SetOut(os.Stdout)

	syncCmd.AddCommand(syncFlushCmd)
	syncFlushCmd.SetOut(os.Stdout)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and deliver writes waiting for storage",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List pending writes",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			pending := s.Queue.Pending()

			if lo.Must(cmd.Flags().GetBool("json")) {
				return printJSON(cmd.OutOrStdout(), pending)
			}

			cmd.Printf("%s %s as %s\n", icon.Get(icon.Sync), util.Quantify(len(pending), "pending write", "pending writes"), style.Faint(s.Owner))
			for _, task := range pending {
				line := style.Fg(lo.Ternary(task.Op == sync.OpDelete, color.Red, color.Green))(string(task.Op))
				cmd.Printf("  %s %s %s", line, style.Faint(string(task.Scope)), task.Key)
				if task.Attempts > 0 {
					retry := time.UnixMilli(task.NotBefore).Format(time.TimeOnly)
					cmd.Printf(" %s", style.Fg(color.Yellow)(util.Quantify(task.Attempts, "attempt", "attempts")+", next at "+retry))
				}
				cmd.Println()
			}
			return nil
		})
	},
}

var syncFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Deliver every pending write now",
	Run: func(cmd *cobra.Command, args []string) {
		withSession(func(ctx context.Context, s *session.Session) error {
			before := s.Queue.Len()

			erase := util.PrintErasable(icon.Get(icon.Progress) + " Delivering...")
			err := s.Queue.Flush(ctx)
			erase()

			if left := s.Queue.Len(); err != nil || left > 0 {
				cmd.Printf("%s %s delivered, %s will be retried\n", icon.Get(icon.Warn), util.Quantify(before-left, "write", "writes"), util.Quantify(left, "write", "writes"))
				if err != nil {
					cmd.Println(style.Faint(err.Error()))
				}
				return nil
			}

			done(cmd, "%s delivered", util.Quantify(before, "write", "writes"))
			return nil
		})
	},
}

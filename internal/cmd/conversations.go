package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage stored conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp()
		if err != nil {
			return err
		}
		defer a.close()

		convs, err := a.conversations.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODEL\tTURNS\tTOKENS\tUPDATED\tTITLE")
		for _, c := range convs {
			var tokens int64
			if c.Usage != nil {
				tokens = c.Usage.TotalTokens
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				c.ID, c.Model, c.Turns(), tokens,
				time.UnixMilli(c.UpdatedAt).Format("2006-01-02 15:04"), c.Title)
		}
		return w.Flush()
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp()
		if err != nil {
			return err
		}
		defer a.close()

		conv, err := a.conversations.Load(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s (%s)\n\n", conv.Title, conv.Model)
		for _, m := range conv.Messages {
			fmt.Fprintf(out, "[%s]\n%s\n\n", m.Role, m.Content)
		}
		if conv.LastError != nil {
			fmt.Fprintf(out, "last error (%d in a row): %s\n", conv.LastError.ConsecutiveFailures, conv.LastError.Message)
		}
		return nil
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete conversations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp()
		if err != nil {
			return err
		}
		defer a.close()

		for _, id := range args {
			if err := a.conversations.Delete(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
	conversationsCmd.AddCommand(conversationsListCmd, conversationsShowCmd, conversationsDeleteCmd)
}

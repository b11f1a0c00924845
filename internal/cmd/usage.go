package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/chatgptgo/chatclient/internal/storage"
	"github.com/spf13/cobra"
)

var usageDays int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage per day and model",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().IntVar(&usageDays, "days", 7, "number of days to include")
}

func runUsage(cmd *cobra.Command, args []string) error {
	if usageDays < 1 {
		return fmt.Errorf("--days must be positive, got %d", usageDays)
	}

	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.usage.GetUsageHistory(usageDays)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "DATE\tMODEL\tREQUESTS\tPROMPT\tCOMPLETION\tTOTAL\t")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t\n",
			r.Date, r.Model, r.RequestCount, r.PromptTokens, r.CompletionTokens, r.TotalTokens)
	}

	totals := storage.Summarize(records)
	models := make([]string, 0, len(totals))
	for m := range totals {
		models = append(models, m)
	}
	sort.Strings(models)
	for _, m := range models {
		t := totals[m]
		fmt.Fprintf(w, "total\t%s\t%d\t%d\t%d\t%d\t\n",
			m, t.RequestCount, t.PromptTokens, t.CompletionTokens, t.TotalTokens)
	}
	return w.Flush()
}

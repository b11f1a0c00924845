package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/chatgptgo/chatclient/internal/game"
	"github.com/spf13/cobra"
)

var rpsRounds int

var rpsCmd = &cobra.Command{
	Use:   "rps",
	Short: "Play rock-paper-scissors against the model",
	Args:  cobra.NoArgs,
	RunE:  runRPS,
}

func init() {
	rootCmd.AddCommand(rpsCmd)
	rpsCmd.Flags().IntVar(&rpsRounds, "rounds", 3, "number of rounds")
}

func runRPS(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := game.New(client, a.cfg.Chat.Model, a.log)
	rounds, err := g.Play(ctx, rpsRounds)

	out := cmd.OutOrStdout()
	for _, r := range rounds {
		fmt.Fprintf(out, "Round %d: user=%s ai=%s result=%s\n", r.Number, r.User, r.AI, r.Result)
	}
	if err != nil {
		return err
	}

	tally := game.Tally(rounds)
	fmt.Fprintf(out, "Wins %d, losses %d, draws %d\n", tally[game.Win], tally[game.Lose], tally[game.Draw])
	return nil
}

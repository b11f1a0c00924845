package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/chatgptgo/chatclient/internal/models"
	"github.com/chatgptgo/chatclient/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Send a prompt, optionally continuing a stored conversation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var (
	askConversation string
	askSystem       string
	askTemperature  float64
	askMaxTokens    int
	askShowThink    bool
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "conversation ID to continue")
	askCmd.Flags().StringVarP(&askSystem, "system", "s", "", "system prompt for a new conversation")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", -1, "sampling temperature (negative uses config)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "maximum completion tokens (0 uses config)")
	askCmd.Flags().BoolVar(&askShowThink, "show-think", false, "print the model's reasoning when present")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.newClient()
	if err != nil {
		return err
	}

	opts := session.Options{
		Temperature: a.temperature(),
		MaxTokens:   a.cfg.Chat.MaxTokens,
	}
	if askTemperature >= 0 {
		opts.Temperature = &askTemperature
	}
	if askMaxTokens > 0 {
		opts.MaxTokens = askMaxTokens
	}
	sess := session.New(client, a.conversations, a.usage, opts, a.log)

	var conv *models.Conversation
	if askConversation != "" {
		conv, err = sess.Resume(askConversation)
	} else {
		system := askSystem
		if system == "" {
			system = a.cfg.Chat.SystemPrompt
		}
		conv, err = sess.Start(a.cfg.Chat.Model, system)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := sess.Send(ctx, conv, strings.Join(args, " "))
	if err != nil {
		a.log.Error("Ask failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		return err
	}

	msg := resp.Choices[0].Message
	out := cmd.OutOrStdout()
	if askShowThink && msg.Think != "" {
		fmt.Fprintf(out, "<think>\n%s\n</think>\n\n", msg.Think)
	}
	fmt.Fprintln(out, msg.Answer())
	fmt.Fprintf(cmd.ErrOrStderr(), "\n[conversation %s · %d tokens]\n", conv.ID, resp.Usage.TotalTokens)

	return nil
}

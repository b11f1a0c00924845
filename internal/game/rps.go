// Package game plays rock-paper-scissors against a chat model, keeping the
// whole match in one conversation.
package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatgptgo/chatclient/pkg/chat"
	"go.uber.org/zap"
)

// Hand is one of the three rock-paper-scissors moves
type Hand string

const (
	Rock     Hand = "Rock"
	Paper    Hand = "Paper"
	Scissors Hand = "Scissors"
	Unknown  Hand = "Unknown"
)

// Hands lists the playable moves in the order the user cycles through them
var Hands = []Hand{Rock, Paper, Scissors}

// Outcome is the result of a round from the user's point of view
type Outcome string

const (
	Win  Outcome = "win"
	Lose Outcome = "lose"
	Draw Outcome = "draw"
)

const systemPrompt = "You are a rock-paper-scissors opponent. " +
	"Whenever the user sends 'Rock', 'Paper' or 'Scissors', " +
	"reply with a random choice of 'Rock', 'Paper' or 'Scissors' as the first word of your answer."

// Round records one played round
type Round struct {
	Number int
	User   Hand
	AI     Hand
	Result Outcome
	Reply  string
}

// Game holds the running conversation of a match
type Game struct {
	client  chat.Completer
	request *chat.ChatRequest
	logger  *zap.Logger
}

// New creates a game that talks to model through client
func New(client chat.Completer, model string, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		client:  client,
		request: chat.NewChatRequest(model, chat.Message{Role: chat.RoleSystem, Content: systemPrompt}),
		logger:  logger,
	}
}

// Messages returns the conversation so far
func (g *Game) Messages() []chat.Message {
	return g.request.Messages
}

// Play runs up to rounds rounds, cycling the user's hand through Hands.
// It stops early, without error, when the model gives no usable reply.
func (g *Game) Play(ctx context.Context, rounds int) ([]Round, error) {
	var played []Round
	for i := 0; i < rounds; i++ {
		user := Hands[i%len(Hands)]
		g.request.AddMessage(chat.RoleUser, string(user))

		resp, err := g.client.ChatCompletionParsed(ctx, g.request)
		if err != nil {
			return played, fmt.Errorf("round %d: %w", i+1, err)
		}
		if !chat.AppendAssistantMessage(g.request, resp, 0) {
			g.logger.Warn("Model returned no assistant message, ending match", zap.Int("round", i+1))
			break
		}

		reply := resp.Choices[0].Message.Answer()
		ai := ParseHand(reply)
		round := Round{
			Number: i + 1,
			User:   user,
			AI:     ai,
			Result: Judge(user, ai),
			Reply:  reply,
		}
		g.logger.Debug("Round played",
			zap.Int("round", round.Number),
			zap.String("user", string(round.User)),
			zap.String("ai", string(round.AI)),
			zap.String("result", string(round.Result)))
		played = append(played, round)
	}
	return played, nil
}

// ParseHand returns the hand mentioned first in text, or Unknown
func ParseHand(text string) Hand {
	text = strings.NewReplacer("\n", "", "\r", "").Replace(text)
	lower := strings.ToLower(text)

	best, bestPos := Unknown, -1
	for _, h := range Hands {
		pos := strings.Index(lower, strings.ToLower(string(h)))
		if pos >= 0 && (bestPos < 0 || pos < bestPos) {
			best, bestPos = h, pos
		}
	}
	return best
}

// Judge scores a round for the user. An Unknown AI hand is a loss.
func Judge(user, ai Hand) Outcome {
	switch {
	case user == ai:
		return Draw
	case user == Rock && ai == Scissors,
		user == Paper && ai == Rock,
		user == Scissors && ai == Paper:
		return Win
	default:
		return Lose
	}
}

// Tally counts outcomes across rounds
func Tally(rounds []Round) map[Outcome]int {
	counts := map[Outcome]int{Win: 0, Lose: 0, Draw: 0}
	for _, r := range rounds {
		counts[r.Result]++
	}
	return counts
}

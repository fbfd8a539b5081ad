package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	"goalkeeper/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotSender is the part of *tgbotapi.BotAPI the reporter needs.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter posts a one-message summary of every engine run to an operators' chat.
type Reporter struct {
	Bot    BotSender
	ChatID int64
}

// NewReporter authorizes the bot and returns a reporter for chatID.
func NewReporter(token string, chatID int64) (*Reporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	bot.Debug = false
	log.Printf("Telegram reporter authorized on account %s", bot.Self.UserName)

	return &Reporter{Bot: bot, ChatID: chatID}, nil
}

// ReportRun sends the run summary. The context is accepted for symmetry with the
// other collaborators; the bot API call itself is bounded by the bot's HTTP client.
func (r *Reporter) ReportRun(_ context.Context, summary models.RunSummary) error {
	msg := tgbotapi.NewMessage(r.ChatID, FormatSummary(summary))
	if _, err := r.Bot.Send(msg); err != nil {
		return fmt.Errorf("send run report: %w", err)
	}
	return nil
}

// FormatSummary renders a run summary as plain text.
func FormatSummary(s models.RunSummary) string {
	return fmt.Sprintf("GoalKeeper slump check %s\n"+
		"examined: %d\n"+
		"escalated to SOS: %d\n"+
		"alerts delivered: %d\n"+
		"new peer matches: %d\n"+
		"took: %s",
		s.RunID, s.Examined, s.Escalated, s.Notified, s.MatchesCreated,
		s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
}

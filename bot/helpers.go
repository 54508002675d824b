package bot

import (
	"log/slog"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

func (b *Bot) sendMessage(chatID int64, text string) {
	message := tu.Message(tu.ID(chatID), text)

	_, err := b.api.SendMessage(message)
	if err != nil {
		if retryAfter, ok := parseRetryAfter(err); ok {
			slog.Info("bot: Rate limit hit, waiting", "retry_after", retryAfter)
			time.Sleep(retryAfter)
			_, retryErr := b.api.SendMessage(message)
			if retryErr == nil {
				slog.Info("bot: Message sent successfully after rate limit wait")

				return
			}
			err = retryErr
		}

		slog.Error("bot: Failed to send message", "error", err, "chat_id", chatID, "text_length", len(text))
	}
}

func (b *Bot) answerCallback(queryID string, text string, alert bool) {
	err := b.api.AnswerCallbackQuery(&telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		slog.Error("bot: Failed to answer callback query", "error", err, "query_id", queryID)
	}
}

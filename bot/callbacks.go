package bot

import (
	"log/slog"

	"telegram-queue-bot/queue"

	"github.com/mymmrac/telego"
)

// queueMessage extracts the queue message a callback button belongs to.
// Telegram may report the message as inaccessible for very old queue
// messages; those callbacks cannot be served.
func (b *Bot) queueMessage(query *telego.CallbackQuery) (*telego.Message, bool) {
	message, ok := query.Message.(*telego.Message)
	if !ok {
		slog.Warn("bot: Callback for inaccessible message", "user_id", query.From.ID)
		b.answerCallback(query.ID, "This queue message is no longer accessible.", true)

		return nil, false
	}

	return message, true
}

func (b *Bot) joinCallback(bot *telego.Bot, update telego.Update) {
	query := update.CallbackQuery

	message, ok := b.queueMessage(query)
	if !ok {
		return
	}

	key := queue.Key{ChatID: message.Chat.ID, MessageID: message.MessageID}
	member := queue.Member{
		UserID:    query.From.ID,
		FirstName: query.From.FirstName,
		LastName:  query.From.LastName,
		Username:  query.From.Username,
	}

	added, err := b.storage.Add(key, member)
	if err != nil {
		b.answerCallback(query.ID, "Database error. Try again later.", false)

		return
	}

	if !added {
		b.answerCallback(query.ID, "You are already in the queue.", false)

		return
	}

	slog.Info("bot: User joined queue", "chat_id", key.ChatID,
		"message_id", key.MessageID, "user_id", member.UserID, "username", member.Username)

	b.queues.GetOrCreate(key).Signal(message)
	b.answerCallback(query.ID, "OK, you were added to the queue.", false)
}

func (b *Bot) leaveCallback(bot *telego.Bot, update telego.Update) {
	query := update.CallbackQuery

	message, ok := b.queueMessage(query)
	if !ok {
		return
	}

	key := queue.Key{ChatID: message.Chat.ID, MessageID: message.MessageID}

	removed, err := b.storage.Remove(key, query.From.ID)
	if err != nil {
		b.answerCallback(query.ID, "Database error. Try again later.", false)

		return
	}

	if !removed {
		b.answerCallback(query.ID, "You were not in the queue.", false)

		return
	}

	slog.Info("bot: User left queue", "chat_id", key.ChatID,
		"message_id", key.MessageID, "user_id", query.From.ID)

	b.queues.GetOrCreate(key).Signal(message)
	b.answerCallback(query.ID, "OK, you were removed from the queue.", false)
}

func (b *Bot) deleteQueueCallback(bot *telego.Bot, update telego.Update) {
	query := update.CallbackQuery

	message, ok := b.queueMessage(query)
	if !ok {
		return
	}

	key := queue.Key{ChatID: message.Chat.ID, MessageID: message.MessageID}

	if !b.isPrivileged(query.From.ID, key.ChatID) {
		slog.Info("bot: Unprivileged queue deletion attempt",
			"chat_id", key.ChatID, "message_id", key.MessageID, "user_id", query.From.ID)
		b.answerCallback(query.ID, "Only an admin can delete the queue.", true)

		return
	}

	if err := b.storage.Clear(key); err != nil {
		b.answerCallback(query.ID, "Database error. Try again later.", false)

		return
	}

	b.queues.Terminate(key)

	if err := b.display.Delete(message); err != nil {
		slog.Error("bot: Cannot delete queue message", "error", err,
			"chat_id", key.ChatID, "message_id", key.MessageID)
		b.answerCallback(query.ID, "Queue deleted, but the message could not be removed.", false)

		return
	}

	slog.Info("bot: Queue deleted", "chat_id", key.ChatID,
		"message_id", key.MessageID, "user_id", query.From.ID)

	b.answerCallback(query.ID, "Queue deleted.", false)
}

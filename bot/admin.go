package bot

import (
	"log/slog"
	"slices"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// isPrivileged reports whether the user may delete queues: either on the
// global allow-list, or (when enabled) an administrator of the chat.
// API failures count as unprivileged.
func (b *Bot) isPrivileged(userID int64, chatID int64) bool {
	if slices.Contains(b.admins, userID) {
		return true
	}

	if !b.includeChatAdmins {
		return false
	}

	admins, err := b.api.GetChatAdministrators(&telego.GetChatAdministratorsParams{
		ChatID: tu.ID(chatID),
	})
	if err != nil {
		slog.Error("bot: Cannot get chat administrators", "error", err, "chat_id", chatID)

		return false
	}

	for _, admin := range admins {
		if admin.MemberUser().ID == userID {
			return true
		}
	}

	return false
}

package bot

import (
	"errors"
	"log/slog"

	"telegram-queue-bot/queue"
	"telegram-queue-bot/storage"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

// Callback data attached to the queue message's inline buttons.
const (
	callbackJoin        = "join"
	callbackLeave       = "leave"
	callbackDeleteQueue = "delete_queue"
)

type Bot struct {
	api               *telego.Bot
	storage           *storage.Storage
	queues            *queue.Registry
	display           queue.Display
	admins            []int64
	includeChatAdmins bool
}

func New(api *telego.Bot, storage *storage.Storage, queues *queue.Registry, display queue.Display, admins []int64, includeChatAdmins bool) *Bot {
	return &Bot{
		api:               api,
		storage:           storage,
		queues:            queues,
		display:           display,
		admins:            admins,
		includeChatAdmins: includeChatAdmins,
	}
}

func (b *Bot) Run() error {
	botUser, err := b.api.GetMe()
	if err != nil {
		slog.Error("bot: Cannot retrieve api user", "error", err)

		return ErrGetMe
	}

	slog.Info("bot: Running as", "id", botUser.ID, "username", botUser.Username, "name", botUser.FirstName)

	updates, err := b.api.UpdatesViaLongPolling(nil)
	if err != nil {
		slog.Error("bot: Cannot get update channel", "error", err)

		return ErrUpdatesChannel
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		slog.Error("bot: Cannot initialize bot handler", "error", err)

		return ErrHandlerInit
	}

	defer bh.Stop()
	defer b.api.StopLongPolling()

	bh.Handle(b.startHandler, th.CommandEqual("start"))
	bh.Handle(b.startHandler, th.CommandEqual("help"))
	bh.Handle(b.createHandler, th.CommandEqual("create"))
	bh.Handle(b.updateHandler, th.CommandEqual("update"))
	bh.Handle(b.joinCallback, th.CallbackDataEqual(callbackJoin))
	bh.Handle(b.leaveCallback, th.CallbackDataEqual(callbackLeave))
	bh.Handle(b.deleteQueueCallback, th.CallbackDataEqual(callbackDeleteQueue))

	bh.Start()

	return nil
}

func (b *Bot) startHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /start")

	b.sendMessage(update.Message.Chat.ID,
		"Hi! This bot lets you create waiting lines in group chats.\n\n"+
			"Send /create to post a new queue message. Members join and "+
			"leave through its buttons; an admin can delete it.")
}

func (b *Bot) createHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /create")

	chatID := update.Message.Chat.ID

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("Join me").WithCallbackData(callbackJoin)),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("Remove me").WithCallbackData(callbackLeave)),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("Delete queue").WithCallbackData(callbackDeleteQueue)),
	)

	message := tu.Message(tu.ID(chatID), "New queue:").WithReplyMarkup(keyboard)

	sent, err := b.api.SendMessage(message)
	if err != nil {
		slog.Error("bot: Cannot send queue message", "error", err, "chat_id", chatID)

		return
	}

	// Pinning is best-effort: the queue works the same unpinned.
	if err := b.display.Pin(sent); err != nil {
		slog.Debug("bot: Cannot pin queue message", "error", err,
			"chat_id", chatID, "message_id", sent.MessageID)
	}
}

func (b *Bot) updateHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /update")

	message := update.Message

	if message.ReplyToMessage == nil {
		b.sendMessage(message.Chat.ID, "Reply to the queue message you want to refresh.")

		return
	}

	target := message.ReplyToMessage
	key := queue.Key{ChatID: target.Chat.ID, MessageID: target.MessageID}

	b.queues.GetOrCreate(key).Signal(target)

	err := b.api.DeleteMessage(&telego.DeleteMessageParams{
		ChatID:    tu.ID(message.Chat.ID),
		MessageID: message.MessageID,
	})
	if err != nil {
		slog.Debug("bot: Cannot delete /update command message", "error", err,
			"chat_id", message.Chat.ID, "message_id", message.MessageID)
	}
}

package bot

import (
	"fmt"
	"strings"
	"time"

	"telegram-queue-bot/queue"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Display adapts the Telegram API to the queue core's display interface.
// Handles are the *telego.Message values of queue messages, carried along
// so edits keep the inline keyboard attached.
type Display struct {
	api *telego.Bot
}

func NewDisplay(api *telego.Bot) *Display {
	return &Display{api: api}
}

func (d *Display) EditText(handle queue.MessageHandle, text string) error {
	message, err := displayMessage(handle)
	if err != nil {
		return err
	}

	_, err = d.api.EditMessageText(&telego.EditMessageTextParams{
		ChatID:      tu.ID(message.Chat.ID),
		MessageID:   message.MessageID,
		Text:        text,
		ReplyMarkup: message.ReplyMarkup,
	})

	return mapEditError(err)
}

func (d *Display) Delete(handle queue.MessageHandle) error {
	message, err := displayMessage(handle)
	if err != nil {
		return err
	}

	return d.api.DeleteMessage(&telego.DeleteMessageParams{
		ChatID:    tu.ID(message.Chat.ID),
		MessageID: message.MessageID,
	})
}

func (d *Display) Pin(handle queue.MessageHandle) error {
	message, err := displayMessage(handle)
	if err != nil {
		return err
	}

	return d.api.PinChatMessage(&telego.PinChatMessageParams{
		ChatID:              tu.ID(message.Chat.ID),
		MessageID:           message.MessageID,
		DisableNotification: true,
	})
}

func displayMessage(handle queue.MessageHandle) (*telego.Message, error) {
	message, ok := handle.(*telego.Message)
	if !ok {
		return nil, fmt.Errorf("unexpected display handle type %T", handle)
	}

	return message, nil
}

// mapEditError translates telego's edit failures into the error taxonomy
// the render scheduler understands. Telego reports API errors as plain
// strings, so matching on message content is all there is.
func mapEditError(err error) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		return queue.ErrUnchanged
	}

	if retryAfter, ok := parseRetryAfter(err); ok {
		return &queue.RateLimitedError{RetryAfter: retryAfter}
	}

	return err
}

// parseRetryAfter extracts the wait from a flood-limit error.
// Format: "telego: editMessageText: api: 429 \"Too Many Requests: retry after 5\", migrate to chat ID: 0, retry after: 5"
func parseRetryAfter(err error) (time.Duration, bool) {
	if !strings.Contains(err.Error(), "Too Many Requests") {
		return 0, false
	}

	parts := strings.Split(err.Error(), "retry after: ")
	if len(parts) != 2 {
		return 0, false
	}

	var retryAfter int
	if _, scanErr := fmt.Sscanf(parts[1], "%d", &retryAfter); scanErr != nil || retryAfter <= 0 {
		return 0, false
	}

	return time.Duration(retryAfter) * time.Second, true
}

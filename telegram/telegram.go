package telegram

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

func opsChatID() int64 {
	id, err := strconv.ParseInt(os.Getenv("TG_OPS_CHAT_ID"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// NotifyOps posts a message to the ops channel. Best effort, failures are
// logged and swallowed so a broken bot never takes a request down with it.
func NotifyOps(message string) {
	chatID := opsChatID()
	if chatID == 0 {
		fmt.Println("TG_OPS_CHAT_ID not set, skip ops message:", message)
		return
	}
	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		fmt.Println("Error tg bot init", err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := bot.Send(msg); err != nil {
		fmt.Println("Error sending ops message", err)
	}
}

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// Commands routes bot commands. Status and Recent render the replies for
// /status and /signals; nil functions leave the command unanswered.
type Commands struct {
	Status func() string
	Recent func() string
}

// Handle answers one command.
func (c Commands) Handle(text string) string {
	cmd := strings.Fields(text)
	if len(cmd) == 0 {
		return ""
	}
	// "/status@my_bot" in group chats
	name, _, _ := strings.Cut(cmd[0], "@")
	switch name {
	case "/status":
		if c.Status != nil {
			return c.Status()
		}
	case "/signals":
		if c.Recent != nil {
			return c.Recent()
		}
	case "/help", "/start":
		return helpText
	}
	return ""
}

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// pause waits d or until ctx is done, reporting whether to keep going.
func pause(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// StartPolling begins long-polling for Telegram commands. Only messages from
// the configured chat are answered. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}
	logger := log.With().Str("component", "telegram").Logger()

	for {
		if ctx.Err() != nil {
			logger.Info().Msg("telegram polling stopped")
			return
		}

		apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.method("getUpdates"), offset)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			logger.Error().Err(err).Msg("create polling request")
			if !pause(ctx, 5*time.Second) {
				return
			}
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("polling request failed")
			if !pause(ctx, 5*time.Second) {
				return
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("read polling response")
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil || !result.OK {
			logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("bad polling response")
			if !pause(ctx, 5*time.Second) {
				return
			}
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if fmt.Sprint(update.Message.Chat.ID) != t.ChatID {
				logger.Warn().Int64("chat", update.Message.Chat.ID).Msg("ignoring command from unknown chat")
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			logger.Info().Str("command", text).Msg("received command")
			if reply := handler(text); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					logger.Error().Err(err).Msg("send reply")
				}
			}
		}
	}
}

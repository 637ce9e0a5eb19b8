package bot

import (
	"fmt"
	"sync"

	"bookshop/internal/shop"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// NewBot creates a new Telegram bot. notifyChatID receives the periodic overdue
// digest; zero disables it.
func NewBot(token string, s *shop.Shop, allowedUserIDs []int64, notifyChatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))
	return newBot(api, s, allowedUserIDs, notifyChatID, logger), nil
}

func newBot(api *tgbotapi.BotAPI, s *shop.Shop, allowedUserIDs []int64, notifyChatID int64, logger *zap.Logger) *Bot {
	allowedUsers := make(map[int64]bool)
	for _, id := range allowedUserIDs {
		allowedUsers[id] = true
	}

	return &Bot{
		api:          api,
		shop:         s,
		allowedUsers: allowedUsers,
		states:       make(map[int64]*ConversationState),
		userLocks:    make(map[int64]*sync.Mutex),
		logger:       logger,
		notifyChatID: notifyChatID,
	}
}

package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Check if user is in a conversation
	if state, ok := b.getState(userID); ok {
		// If conversation is already complete (Step == -1), clean it up and process as new command
		if state.Step == -1 {
			b.clearState(userID)
		} else if message.IsCommand() {
			// Allow any command to interrupt/cancel an ongoing conversation
			b.clearState(userID)
		} else {
			// Not a command, continue the conversation
			b.handleConversation(ctx, message, state)
			return
		}
	}

	// Handle commands
	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			b.handleStart(message)
		case "books":
			b.handleBooks(message)
		case "rent":
			b.handleRentStart(message)
		case "return":
			b.handleReturnStart(message)
		case "overdue":
			b.handleOverdue(ctx, message)
		case "stats":
			b.handleStats(message)
		default:
			b.sendText(message.Chat.ID, "Unknown command. Use /start to see available commands.")
		}
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	userID := query.From.ID
	ctx := context.Background()

	// Answer the callback query to remove loading state
	if b.api != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.logger.Warn("Failed to answer callback query", zap.Error(err))
		}
	}

	// Check if user is in a conversation
	state, ok := b.getState(userID)
	if !ok || query.Message == nil {
		return
	}

	// Handle callback based on prefix
	data := query.Data
	switch {
	case strings.HasPrefix(data, "rent_book:"):
		b.handleRentBookCallback(query, state)
	case strings.HasPrefix(data, "rent_customer:"):
		b.handleRentCustomerCallback(query, state)
	case strings.HasPrefix(data, "rent_days:"):
		b.handleRentDaysCallback(ctx, query, state)
	case strings.HasPrefix(data, "return:"):
		b.handleReturnCallback(ctx, query, state)
	}

	// Clean up completed conversations
	if state.Step == -1 {
		b.clearState(userID)
	}
}

package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	userID := message.From.ID

	switch state.Command {
	case "rent":
		b.handleRentConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == -1 {
		b.clearState(userID)
	}
}

// handleRentConversation accepts a typed rental period after "Custom" was chosen
func (b *Bot) handleRentConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 3: // Waiting for custom day count
		if _, ok := state.Data["awaiting_custom_days"]; !ok {
			// Not awaiting custom days, ignore text input
			return
		}

		days, err := strconv.Atoi(strings.TrimSpace(message.Text))
		if err != nil || days < 1 {
			b.sendText(message.Chat.ID, "❌ Invalid number of days. Please enter a whole number of at least 1\n\nExample: 10")
			return
		}

		delete(state.Data, "awaiting_custom_days")
		b.completeRental(ctx, message.Chat.ID, state, days)
	}
}

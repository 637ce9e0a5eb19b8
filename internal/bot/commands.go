package bot

import (
	"context"
	"fmt"
	"strings"

	"bookshop/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to the Bookshop staff bot! 📚

Available commands:
/books - Show books and stock
/rent - Rent a book to a customer
/return - Return a rented book
/overdue - List overdue rentals
/stats - Rental statistics`

	b.sendText(message.Chat.ID, text)
}

// handleBooks lists the catalogue with stock
func (b *Bot) handleBooks(message *tgbotapi.Message) {
	books := b.shop.Books.List()
	if len(books) == 0 {
		b.sendText(message.Chat.ID, "No books in the shop yet.")
		return
	}

	var text strings.Builder
	text.WriteString("📚 Books:\n\n")
	for _, book := range books {
		text.WriteString(fmt.Sprintf("#%d %s by %s - stock %d, %s\n",
			book.ID, book.Title, book.Author, book.Stock, book.Status))
	}
	b.sendText(message.Chat.ID, text.String())
}

// handleRentStart initiates the rent conversation
func (b *Bot) handleRentStart(message *tgbotapi.Message) {
	books := rentableBooks(b.shop.Books.List())
	if len(books) == 0 {
		b.sendText(message.Chat.ID, "No books available for rent right now.")
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "rent",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	msg := tgbotapi.NewMessage(message.Chat.ID, "📚 Select a book:")
	msg.ReplyMarkup = bookKeyboard(books)
	b.sendMessage(msg)
}

// handleReturnStart shows the open rentals to pick from
func (b *Bot) handleReturnStart(message *tgbotapi.Message) {
	rentals := b.shop.Rentals.ListOpen()
	if len(rentals) == 0 {
		b.sendText(message.Chat.ID, "No open rentals.")
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "return",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	msg := tgbotapi.NewMessage(message.Chat.ID, "📥 Select the rental to return:")
	msg.ReplyMarkup = returnKeyboard(rentals)
	b.sendMessage(msg)
}

// handleOverdue sends the overdue digest
func (b *Bot) handleOverdue(ctx context.Context, message *tgbotapi.Message) {
	rentals, err := b.shop.Rentals.ListOverdue(ctx)
	if err != nil {
		b.logger.Error("Failed to list overdue rentals", zap.Error(err))
		b.sendText(message.Chat.ID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.sendText(message.Chat.ID, ComposeOverdueDigest(rentals, b.shop.Today()))
}

// handleStats shows the rental overview
func (b *Bot) handleStats(message *tgbotapi.Message) {
	b.sendText(message.Chat.ID, FormatStats(b.shop.Rentals.Stats()))
}

// FormatStats renders the rental overview as a chat message
func FormatStats(s models.Stats) string {
	var text strings.Builder
	text.WriteString("📊 Rental statistics\n\n")
	text.WriteString(fmt.Sprintf("Total rentals: %d\n", s.TotalRentals))
	text.WriteString(fmt.Sprintf("Active: %d\n", s.ActiveRentals))
	text.WriteString(fmt.Sprintf("Overdue: %d\n", s.OverdueRentals))
	text.WriteString(fmt.Sprintf("Returned: %d\n", s.ReturnedRentals))
	text.WriteString(fmt.Sprintf("Revenue: %s\n", s.TotalRevenue.StringFixed(2)))
	return text.String()
}

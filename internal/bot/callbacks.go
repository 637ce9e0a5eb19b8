package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bookshop/internal/shop"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleRentBookCallback stores the chosen book and asks for the customer
func (b *Bot) handleRentBookCallback(query *tgbotapi.CallbackQuery, state *ConversationState) {
	if state.Command != "rent" || state.Step != 1 {
		return
	}
	chatID := query.Message.Chat.ID

	bookID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, "rent_book:"), 10, 64)
	if err != nil {
		return
	}

	book, err := b.shop.Books.Get(bookID)
	if err != nil {
		b.sendText(chatID, "Error: Invalid book selection")
		state.Step = -1
		return
	}

	customers := b.shop.Customers.List()
	if len(customers) == 0 {
		b.sendText(chatID, "No customers registered yet. Add one in the backoffice first.")
		state.Step = -1
		return
	}

	state.Data["book_id"] = book.ID
	state.Data["book_title"] = book.Title
	state.Step = 2

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📚 %s\n\n👤 Select a customer:", book.Title))
	msg.ReplyMarkup = customerKeyboard(customers)
	b.sendMessage(msg)
}

// handleRentCustomerCallback stores the customer and asks for the rental period
func (b *Bot) handleRentCustomerCallback(query *tgbotapi.CallbackQuery, state *ConversationState) {
	if state.Command != "rent" || state.Step != 2 {
		return
	}
	chatID := query.Message.Chat.ID

	customerID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, "rent_customer:"), 10, 64)
	if err != nil {
		return
	}

	state.Data["customer_id"] = customerID
	state.Step = 3

	msg := tgbotapi.NewMessage(chatID, "📅 For how many days?")
	msg.ReplyMarkup = daysKeyboard()
	b.sendMessage(msg)
}

// handleRentDaysCallback creates the rental or switches to typed input
func (b *Bot) handleRentDaysCallback(ctx context.Context, query *tgbotapi.CallbackQuery, state *ConversationState) {
	if state.Command != "rent" || state.Step != 3 {
		return
	}
	chatID := query.Message.Chat.ID
	data := strings.TrimPrefix(query.Data, "rent_days:")

	// Handle custom days option
	if data == "custom" {
		state.Data["awaiting_custom_days"] = true
		b.sendText(chatID, "📝 Please enter the number of days\n\nExample: 10")
		return
	}

	days, err := strconv.Atoi(data)
	if err != nil {
		return
	}
	b.completeRental(ctx, chatID, state, days)
}

// completeRental creates the rental collected by the conversation
func (b *Bot) completeRental(ctx context.Context, chatID int64, state *ConversationState, days int) {
	bookID, _ := state.Data["book_id"].(int64)
	customerID, _ := state.Data["customer_id"].(int64)

	rental, err := b.shop.Rentals.Create(ctx, shop.RentalInput{
		BookID:     bookID,
		CustomerID: customerID,
		RentalDays: days,
	})
	state.Step = -1 // Mark conversation as complete

	if err != nil {
		b.logger.Warn("Rental from chat rejected",
			zap.Int64("book_id", bookID),
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
		b.sendText(chatID, fmt.Sprintf("❌ %v", err))
		return
	}

	text := fmt.Sprintf("✅ Rental #%d created!\n\n📚 Book: %s\n👤 Customer: %s\n📅 Due: %s",
		rental.ID, rental.BookTitle, rental.CustomerName, rental.DueDate)
	b.sendText(chatID, text)
}

// handleReturnCallback returns the chosen rental
func (b *Bot) handleReturnCallback(ctx context.Context, query *tgbotapi.CallbackQuery, state *ConversationState) {
	if state.Command != "return" {
		return
	}
	chatID := query.Message.Chat.ID
	state.Step = -1

	rentalID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, "return:"), 10, 64)
	if err != nil {
		return
	}

	rental, err := b.shop.Rentals.Return(ctx, rentalID)
	if err != nil {
		b.sendText(chatID, fmt.Sprintf("❌ %v", err))
		return
	}

	text := fmt.Sprintf("✅ Returned!\n\n📚 Book: %s\n👤 Customer: %s\n⏱ Days rented: %d",
		rental.BookTitle, rental.CustomerName, rental.DaysRented)
	b.sendText(chatID, text)
}

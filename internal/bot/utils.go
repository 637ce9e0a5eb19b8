package bot

import (
	"fmt"
	"sync"

	"bookshop/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage sends a message, doing nothing when no API is attached (tests)
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if b.api == nil {
		return
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// lockUser serializes the updates of one user so a conversation state is only
// touched by one handler at a time
func (b *Bot) lockUser(userID int64) func() {
	b.statesMu.Lock()
	mu, ok := b.userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		b.userLocks[userID] = mu
	}
	b.statesMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (b *Bot) getState(userID int64) (*ConversationState, bool) {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	state, ok := b.states[userID]
	return state, ok
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}

// bookKeyboard lays out rentable books two per row
func bookKeyboard(books []models.Book) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var currentRow []tgbotapi.InlineKeyboardButton
	for i, book := range books {
		button := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%s (%d)", book.Title, book.Stock),
			fmt.Sprintf("rent_book:%d", book.ID),
		)
		currentRow = append(currentRow, button)

		// Add row when we have 2 buttons or it's the last book
		if len(currentRow) == 2 || i == len(books)-1 {
			rows = append(rows, currentRow)
			currentRow = []tgbotapi.InlineKeyboardButton{}
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func customerKeyboard(customers []models.Customer) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range customers {
		button := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("👤 %s (%s)", c.Name, c.Phone),
			fmt.Sprintf("rent_customer:%d", c.ID),
		)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func daysKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("3 days", "rent_days:3"),
			tgbotapi.NewInlineKeyboardButtonData("7 days", "rent_days:7"),
			tgbotapi.NewInlineKeyboardButtonData("14 days", "rent_days:14"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Custom", "rent_days:custom"),
		),
	)
}

func returnKeyboard(rentals []models.RentalWithDetails) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range rentals {
		label := fmt.Sprintf("#%d %s / %s", r.ID, r.BookTitle, r.CustomerName)
		if r.IsOverdue {
			label = "⚠️ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("return:%d", r.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// rentableBooks filters books that can be lent right now
func rentableBooks(books []models.Book) []models.Book {
	var out []models.Book
	for _, b := range books {
		if b.Stock > 0 && b.Status == models.BookAvailable {
			out = append(out, b)
		}
	}
	return out
}

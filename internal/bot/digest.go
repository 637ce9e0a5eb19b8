package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bookshop/internal/models"

	"go.uber.org/zap"
)

// ComposeOverdueDigest groups overdue rentals by customer.
//
// Customers are listed alphabetically; each line names the book, its due date
// and how many days late it is on the given day.
func ComposeOverdueDigest(rentals []models.RentalWithDetails, today models.Date) string {
	if len(rentals) == 0 {
		return "✅ No overdue rentals."
	}

	type group struct {
		name, phone string
		lines       []string
	}
	groups := make(map[int64]*group)
	for _, r := range rentals {
		g, ok := groups[r.CustomerID]
		if !ok {
			g = &group{name: r.CustomerName, phone: r.CustomerPhone}
			groups[r.CustomerID] = g
		}
		late := int(today.Time().Sub(r.DueDate.Time()).Hours() / 24)
		g.lines = append(g.lines, fmt.Sprintf("  • %s, due %s (%d days late)", r.BookTitle, r.DueDate, late))
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].name != ordered[j].name {
			return ordered[i].name < ordered[j].name
		}
		return ordered[i].phone < ordered[j].phone
	})

	var text strings.Builder
	text.WriteString(fmt.Sprintf("⚠️ Overdue rentals: %d\n", len(rentals)))
	for _, g := range ordered {
		text.WriteString(fmt.Sprintf("\n👤 %s (%s)\n", g.name, g.phone))
		for _, line := range g.lines {
			text.WriteString(line)
			text.WriteString("\n")
		}
	}
	return text.String()
}

// RunOverdueDigest posts the overdue digest to the notify chat every interval
// until ctx is cancelled. Nothing is sent when no rentals are overdue.
func (b *Bot) RunOverdueDigest(ctx context.Context, interval time.Duration) {
	if b.notifyChatID == 0 {
		return
	}
	b.logger.Info("Overdue digest scheduled",
		zap.Int64("chat_id", b.notifyChatID),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sendOverdueDigest(ctx)
		}
	}
}

func (b *Bot) sendOverdueDigest(ctx context.Context) {
	rentals, err := b.shop.Rentals.ListOverdue(ctx)
	if err != nil {
		b.logger.Error("Failed to build overdue digest", zap.Error(err))
		return
	}
	if len(rentals) == 0 {
		return
	}

	b.logger.Info("Sending overdue digest", zap.Int("rentals", len(rentals)))
	b.sendText(b.notifyChatID, ComposeOverdueDigest(rentals, b.shop.Today()))
}

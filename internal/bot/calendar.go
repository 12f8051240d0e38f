// Package bot implements inbound event handling for TaskBell.
//
// This file renders the inline calendar keyboard used by the reminder
// wizards.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/taskbell/taskbell/internal/models"
)

const calendarColumns = 7

// sendCalendar sends a month grid keyboard. Day buttons carry
// calendar_{YYYY-MM-DD} data; the header row navigates months via
// month_{m}_{y}.
func (h *Handler) sendCalendar(ctx context.Context, chatID int64, year int, month time.Month) error {
	text, keyboard := buildCalendar(year, month, h.clock.Location())
	return h.notifier.SendKeyboard(ctx, chatID, text, keyboard)
}

func buildCalendar(year int, month time.Month, loc *time.Location) (string, models.InlineKeyboardMarkup) {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()
	firstWeekday := int(firstOfMonth.Weekday()) // Sunday-first grid

	text := fmt.Sprintf("📅 %s %d\n\nSun Mon Tue Wed Thu Fri Sat", month.String()[:3], year)

	var keyboard models.InlineKeyboardMarkup

	prev := firstOfMonth.AddDate(0, -1, 0)
	next := firstOfMonth.AddDate(0, 1, 0)
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, []models.InlineKeyboardButton{
		{Text: "◀️ Previous", CallbackData: fmt.Sprintf("month_%d_%d", int(prev.Month()), prev.Year())},
		{Text: "Next ▶️", CallbackData: fmt.Sprintf("month_%d_%d", int(next.Month()), next.Year())},
	})

	row := make([]models.InlineKeyboardButton, 0, calendarColumns)
	for i := 0; i < firstWeekday; i++ {
		row = append(row, fillerCell())
	}
	for day := 1; day <= daysInMonth; day++ {
		dateStr := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		row = append(row, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("%d", day),
			CallbackData: "calendar_" + dateStr,
		})
		if len(row) == calendarColumns {
			keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, row)
			row = make([]models.InlineKeyboardButton, 0, calendarColumns)
		}
	}
	if len(row) > 0 {
		for len(row) < calendarColumns {
			row = append(row, fillerCell())
		}
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, row)
	}

	return text, keyboard
}

func fillerCell() models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: " ", CallbackData: "noop"}
}

package handlers

import (
	"github.com/go-telegram/bot/models"

	"github.com/mpetrov/rollcall/internal/report"
)

// BuildKeyboard lays out the navigation controls for one report page. Every
// button carries the complete (page, filter, sort) target, so pressing it
// reconstructs the next view without any session state on our side.
func BuildKeyboard(res report.Result) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	var navRow []models.InlineKeyboardButton
	if res.Page > 0 {
		navRow = append(navRow, models.InlineKeyboardButton{
			Text:         "⟨ Prev",
			CallbackData: report.NavState{Page: res.Page - 1, Filter: res.Filter, Sort: res.Sort}.Encode(),
		})
	}
	if res.Page < res.TotalPages-1 {
		navRow = append(navRow, models.InlineKeyboardButton{
			Text:         "Next ⟩",
			CallbackData: report.NavState{Page: res.Page + 1, Filter: res.Filter, Sort: res.Sort}.Encode(),
		})
	}
	if len(navRow) > 0 {
		rows = append(rows, navRow)
	}

	rows = append(rows, []models.InlineKeyboardButton{
		{
			Text:         "All",
			CallbackData: report.NavState{Page: res.Page, Filter: report.FilterAll, Sort: res.Sort}.Encode(),
		},
		{
			Text:         "Active",
			CallbackData: report.NavState{Page: res.Page, Filter: report.FilterActive, Sort: res.Sort}.Encode(),
		},
		{
			Text:         "Inactive",
			CallbackData: report.NavState{Page: res.Page, Filter: report.FilterInactive, Sort: res.Sort}.Encode(),
		},
	})

	rows = append(rows, []models.InlineKeyboardButton{
		{
			Text:         "Sort: Name",
			CallbackData: report.NavState{Page: res.Page, Filter: res.Filter, Sort: report.SortByName}.Encode(),
		},
		{
			Text:         "Sort: Last active",
			CallbackData: report.NavState{Page: res.Page, Filter: res.Filter, Sort: report.SortByLastActive}.Encode(),
		},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

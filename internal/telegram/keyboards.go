package telegram

import (
	"fmt"
	"sort"

	"anonchat/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard(loc *localization.Localizer, lang string, isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_find")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_profile")),
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_stats")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_referral")),
		),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_admin")),
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_broadcast")),
		))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func chatKeyboard(loc *localization.Localizer, lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_leave")),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func genderKeyboard(loc *localization.Localizer, lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_gender_male")),
			tgbotapi.NewKeyboardButton(loc.GetString(lang, "btn_gender_female")),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func profileKeyboard(loc *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(loc.GetString(lang, "btn_change_name"), "change_name"),
		),
	)
}

// ratingKeyboard offers the 1-5 stars for the just-ended session plus
// a skip. Both partner and session ride in the callback data so a
// stale keyboard can never rate the wrong chat.
func ratingKeyboard(loc *localization.Localizer, lang string, partnerID int64, sessionID uint) tgbotapi.InlineKeyboardMarkup {
	stars := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for score := 1; score <= 5; score++ {
		stars = append(stars, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d⭐", score),
			fmt.Sprintf("rate_%d_%d_%d", partnerID, sessionID, score),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(stars...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(loc.GetString(lang, "btn_skip"), "skip_rating"),
		),
	)
}

func reportKeyboard(loc *localization.Localizer, lang string, partnerID int64, sessionID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.GetString(lang, "btn_report"),
				fmt.Sprintf("report_%d_%d", partnerID, sessionID),
			),
			tgbotapi.NewInlineKeyboardButtonData(loc.GetString(lang, "btn_skip"), "skip_rating"),
		),
	)
}

func adminActionKeyboard(reportID uint, reportedID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔨 Ban", fmt.Sprintf("adm_ban_%d_%d", reportID, reportedID)),
			tgbotapi.NewInlineKeyboardButtonData("✅ Skip", fmt.Sprintf("adm_skip_%d", reportID)),
			tgbotapi.NewInlineKeyboardButtonData("🔒 Close", fmt.Sprintf("adm_close_%d", reportID)),
		),
	)
}

func languageKeyboard(loc *localization.Localizer) tgbotapi.InlineKeyboardMarkup {
	langs := loc.Languages()
	sort.Strings(langs)
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(langs))
	for _, lang := range langs {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(lang, "set_lang_"+lang))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"anonchat/backend/internal/models"
	"anonchat/backend/internal/registry"
	"anonchat/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Wizard states kept in Redis between messages. Losing one mid-flow
// just re-runs the current prompt on the next /start.
const (
	stateRegName   = "reg_name"
	stateRegGender = "reg_gender"
	stateRegAge    = "reg_age"
	stateRename    = "rename"
	stateBroadcast = "broadcast"
)

func (b *BotService) handleWizard(ctx context.Context, m *tgbotapi.Message, state *storage.ConvState) {
	uid := m.Chat.ID
	if state.Data == nil {
		state.Data = make(map[string]string)
	}
	lang := state.Data["lang"]
	if lang == "" {
		lang = b.langFor(uid, m)
	}

	switch state.State {
	case stateRegName:
		name := strings.TrimSpace(m.Text)
		if !registry.ValidName(name) {
			b.reply(uid, b.t(lang, "reg_invalid_name"))
			return
		}
		state.Data["name"] = name
		state.State = stateRegGender
		if err := b.Storage.SetConvState(ctx, uid, *state); err != nil {
			b.Log.Error("conv state set failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		b.replyKB(uid, b.tf(lang, "reg_ask_gender", name), genderKeyboard(b.Localizer, lang))

	case stateRegGender:
		var gender string
		switch {
		case strings.HasPrefix(m.Text, "👦"):
			gender = models.GenderMale
		case strings.HasPrefix(m.Text, "👧"):
			gender = models.GenderFemale
		default:
			b.replyKB(uid, b.t(lang, "press_gender_button"), genderKeyboard(b.Localizer, lang))
			return
		}
		state.Data["gender"] = gender
		state.State = stateRegAge
		if err := b.Storage.SetConvState(ctx, uid, *state); err != nil {
			b.Log.Error("conv state set failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		msg := tgbotapi.NewMessage(uid, b.t(lang, "reg_ask_age"))
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		if _, err := b.API.Send(msg); err != nil {
			b.Log.Warn("send failed", zap.Int64("user", uid), zap.Error(err))
		}

	case stateRegAge:
		age, err := strconv.Atoi(strings.TrimSpace(m.Text))
		if err != nil {
			b.reply(uid, b.t(lang, "reg_invalid_age"))
			return
		}
		var referredBy *int64
		if ref, err := strconv.ParseInt(state.Data["ref"], 10, 64); err == nil {
			referredBy = &ref
		}

		user, referrer, err := b.Registry.Register(
			uid, state.Data["name"], state.Data["gender"], age, lang, referredBy)
		if errors.Is(err, registry.ErrInvalidAge) {
			b.reply(uid, b.t(lang, "reg_invalid_age"))
			return
		}
		if err != nil {
			b.Log.Error("registration failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		if err := b.Storage.ClearConvState(ctx, uid); err != nil {
			b.Log.Warn("conv state clear failed", zap.Int64("user", uid), zap.Error(err))
		}
		b.replyKB(uid, b.tf(lang, "reg_done", user.Display()),
			mainMenuKeyboard(b.Localizer, lang, uid == b.AdminID))
		if referrer != nil {
			b.reply(referrer.TelegramID,
				b.tf(referrer.Language, "ref_joined", user.Name, referrer.RefCount))
		}

	case stateRename:
		name := strings.TrimSpace(m.Text)
		if err := b.Registry.Rename(uid, name); err != nil {
			b.reply(uid, b.t(lang, "reg_invalid_name"))
			return
		}
		if err := b.Storage.ClearConvState(ctx, uid); err != nil {
			b.Log.Warn("conv state clear failed", zap.Int64("user", uid), zap.Error(err))
		}
		b.reply(uid, b.tf(lang, "name_changed", name))

	case stateBroadcast:
		if err := b.Storage.ClearConvState(ctx, uid); err != nil {
			b.Log.Warn("conv state clear failed", zap.Int64("user", uid), zap.Error(err))
		}
		if uid != b.AdminID {
			b.reply(uid, b.t(lang, "no_rights"))
			return
		}
		b.startBroadcast(ctx, lang, m.Text)

	default:
		if err := b.Storage.ClearConvState(ctx, uid); err != nil {
			b.Log.Warn("conv state clear failed", zap.Int64("user", uid), zap.Error(err))
		}
		b.reply(uid, b.t(lang, "need_start"))
	}
}

func (b *BotService) onBroadcastPrompt(ctx context.Context, user *models.User) {
	uid := user.TelegramID
	if uid != b.AdminID {
		b.reply(uid, b.t(user.Language, "no_rights"))
		return
	}
	state := storage.ConvState{State: stateBroadcast, Data: map[string]string{"lang": user.Language}}
	if err := b.Storage.SetConvState(ctx, uid, state); err != nil {
		b.Log.Error("conv state set failed", zap.Int64("user", uid), zap.Error(err))
		return
	}
	b.reply(uid, b.t(user.Language, "broadcast_prompt"))
}

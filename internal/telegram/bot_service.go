// Package telegram is the transport layer: it turns Telegram updates
// into core operations and renders the results back as localized
// messages and keyboards. No business rule lives here.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"anonchat/backend/internal/localization"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/moderation"
	"anonchat/backend/internal/pairing"
	"anonchat/backend/internal/registry"
	"anonchat/backend/internal/relay"
	"anonchat/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Deps bundles everything the bot dispatcher needs.
type Deps struct {
	API        *tgbotapi.BotAPI
	Registry   *registry.Service
	Pairing    *pairing.Engine
	Relay      *relay.Router
	Moderation *moderation.Service
	Storage    storage.Storage
	Localizer  *localization.Localizer
	Log        *zap.Logger

	AdminID        int64
	BroadcastPause time.Duration
}

type BotService struct {
	Deps
	client *Client
}

func NewBotService(deps Deps) *BotService {
	return &BotService{
		Deps:   deps,
		client: NewClient(deps.API, deps.Log),
	}
}

// Client exposes the outbound side for wiring into the core services.
func (b *BotService) Client() *Client {
	return b.client
}

// Run polls for updates until the context is cancelled.
func (b *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.API.GetUpdatesChan(u)

	b.Log.Info("bot started", zap.String("username", b.API.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *BotService) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Chat.IsPrivate():
		b.handleMessage(ctx, update.Message)
	}
}

func (b *BotService) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	uid := m.Chat.ID

	if m.IsCommand() {
		b.handleCommand(ctx, m)
		return
	}

	state, err := b.Storage.GetConvState(ctx, uid)
	if err != nil {
		b.Log.Warn("conv state lookup failed", zap.Int64("user", uid), zap.Error(err))
	}
	if state != nil {
		b.handleWizard(ctx, m, state)
		return
	}

	user, err := b.Registry.Resolve(uid)
	if errors.Is(err, models.ErrNotFound) {
		b.reply(uid, b.t(b.detectLang(m), "need_start"))
		return
	}
	if err != nil {
		b.Log.Error("user lookup failed", zap.Int64("user", uid), zap.Error(err))
		return
	}
	lang := user.Language

	// Menu buttons are routed by their emoji prefix so every
	// localized rendering of the same button hits the same handler.
	switch {
	case strings.HasPrefix(m.Text, "🔍"):
		b.onFind(user)
	case strings.HasPrefix(m.Text, "🚪"):
		b.onLeave(user)
	case strings.HasPrefix(m.Text, "👤"):
		b.onProfile(user)
	case strings.HasPrefix(m.Text, "📊"):
		b.onStats(user)
	case strings.HasPrefix(m.Text, "🔗"):
		b.onReferral(user)
	case strings.HasPrefix(m.Text, "🛡"):
		b.onAdminPanel(user)
	case strings.HasPrefix(m.Text, "📢"):
		b.onBroadcastPrompt(ctx, user)
	default:
		payload, ok := payloadFromMessage(m)
		if !ok {
			b.reply(uid, b.t(lang, "unsupported_payload"))
			return
		}
		b.onRelay(ctx, user, payload)
	}
}

func (b *BotService) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	uid := m.Chat.ID
	switch m.Command() {
	case "start":
		b.onStart(ctx, m)
		return
	case "language":
		b.replyInline(uid, b.t(b.langFor(uid, m), "choose_language"), languageKeyboard(b.Localizer))
		return
	}

	user, err := b.Registry.Resolve(uid)
	if errors.Is(err, models.ErrNotFound) {
		b.reply(uid, b.t(b.detectLang(m), "need_start"))
		return
	}
	if err != nil {
		b.Log.Error("user lookup failed", zap.Int64("user", uid), zap.Error(err))
		return
	}

	switch m.Command() {
	case "find":
		b.onFind(user)
	case "leave", "stop":
		b.onLeave(user)
	case "profile":
		b.onProfile(user)
	case "stats":
		b.onStats(user)
	case "admin":
		b.onAdminPanel(user)
	case "ban":
		b.onBanCommand(user, m.CommandArguments(), true)
	case "unban":
		b.onBanCommand(user, m.CommandArguments(), false)
	}
}

func (b *BotService) onStart(ctx context.Context, m *tgbotapi.Message) {
	uid := m.Chat.ID

	user, err := b.Registry.Resolve(uid)
	if err == nil {
		if err := b.Storage.ClearConvState(ctx, uid); err != nil {
			b.Log.Warn("conv state clear failed", zap.Int64("user", uid), zap.Error(err))
		}
		b.replyKB(uid,
			b.tf(user.Language, "welcome_back", user.Display()),
			mainMenuKeyboard(b.Localizer, user.Language, uid == b.AdminID))
		return
	}
	if !errors.Is(err, models.ErrNotFound) {
		b.Log.Error("user lookup failed", zap.Int64("user", uid), zap.Error(err))
		return
	}

	lang := b.detectLang(m)
	data := map[string]string{"lang": lang}
	if args := m.CommandArguments(); strings.HasPrefix(args, "ref_") {
		data["ref"] = strings.TrimPrefix(args, "ref_")
	}
	state := storage.ConvState{State: stateRegName, Data: data}
	if err := b.Storage.SetConvState(ctx, uid, state); err != nil {
		b.Log.Error("conv state set failed", zap.Int64("user", uid), zap.Error(err))
		return
	}
	b.reply(uid, b.t(lang, "reg_intro"))
}

func (b *BotService) onFind(user *models.User) {
	uid := user.TelegramID
	lang := user.Language

	res, err := b.Pairing.Find(uid)
	switch {
	case errors.Is(err, models.ErrBanned):
		b.reply(uid, b.t(lang, "banned"))
		return
	case errors.Is(err, models.ErrAlreadyPaired):
		b.reply(uid, b.t(lang, "already_in_chat"))
		return
	case errors.Is(err, models.ErrAlreadyQueued):
		b.reply(uid, b.t(lang, "already_searching"))
		return
	case err != nil:
		b.Log.Error("find failed", zap.Int64("user", uid), zap.Error(err))
		return
	}

	if res.Queued {
		b.replyKB(uid, b.t(lang, "searching"), chatKeyboard(b.Localizer, lang))
		return
	}

	partner, err := b.Registry.Resolve(res.PartnerID)
	if err != nil {
		b.Log.Error("partner lookup failed", zap.Int64("partner", res.PartnerID), zap.Error(err))
		return
	}
	b.replyKB(uid,
		b.tf(lang, "match_found", partner.Display()),
		chatKeyboard(b.Localizer, lang))
	b.replyKB(partner.TelegramID,
		b.tf(partner.Language, "match_found", user.Display()),
		chatKeyboard(b.Localizer, partner.Language))
}

func (b *BotService) onLeave(user *models.User) {
	uid := user.TelegramID
	lang := user.Language

	res, err := b.Pairing.Leave(uid)
	if errors.Is(err, models.ErrNotInSession) {
		b.reply(uid, b.t(lang, "not_in_chat"))
		return
	}
	if err != nil {
		b.Log.Error("leave failed", zap.Int64("user", uid), zap.Error(err))
		return
	}
	if res.Cancelled {
		b.replyKB(uid, b.t(lang, "search_cancelled"),
			mainMenuKeyboard(b.Localizer, lang, uid == b.AdminID))
		return
	}

	b.replyKB(uid, b.t(lang, "chat_ended"),
		mainMenuKeyboard(b.Localizer, lang, uid == b.AdminID))
	b.replyInline(uid, b.t(lang, "rate_prompt"),
		ratingKeyboard(b.Localizer, lang, res.PartnerID, res.SessionID))

	partner, err := b.Registry.Resolve(res.PartnerID)
	if err != nil {
		b.Log.Error("partner lookup failed", zap.Int64("partner", res.PartnerID), zap.Error(err))
		return
	}
	b.replyKB(partner.TelegramID,
		b.tf(partner.Language, "partner_left", user.Display()),
		mainMenuKeyboard(b.Localizer, partner.Language, partner.TelegramID == b.AdminID))
	b.replyInline(partner.TelegramID, b.t(partner.Language, "rate_prompt"),
		ratingKeyboard(b.Localizer, partner.Language, uid, res.SessionID))
}

func (b *BotService) onRelay(ctx context.Context, user *models.User, payload models.Payload) {
	uid := user.TelegramID
	lang := user.Language

	err := b.Relay.Relay(ctx, uid, payload)
	switch {
	case errors.Is(err, models.ErrBanned):
		b.reply(uid, b.t(lang, "banned"))
	case errors.Is(err, models.ErrNotInSession):
		queued, qerr := b.Storage.InQueue(uid)
		if qerr == nil && queued {
			b.reply(uid, b.t(lang, "still_searching"))
			return
		}
		b.reply(uid, b.t(lang, "not_in_chat"))
	case err != nil:
		b.Log.Error("relay failed", zap.Int64("user", uid), zap.Error(err))
	}
}

func (b *BotService) onProfile(user *models.User) {
	lang := user.Language
	icon, label := "👤", user.Gender
	switch user.Gender {
	case models.GenderMale:
		icon, label = "👦", b.t(lang, "gender_male")
	case models.GenderFemale:
		icon, label = "👧", b.t(lang, "gender_female")
	}
	text := b.tf(lang, "profile_view",
		user.Name, icon, label, user.Age,
		user.ChatsCount, user.MessagesSent, user.AvgRating(), user.RefCount)
	b.replyInline(user.TelegramID, text, profileKeyboard(b.Localizer, lang))
}

func (b *BotService) onStats(user *models.User) {
	stats, err := b.Registry.Stats()
	if err != nil {
		b.Log.Error("stats failed", zap.Error(err))
		return
	}
	b.reply(user.TelegramID, b.tf(user.Language, "stats_view",
		stats.Users, stats.ActiveSessions, stats.Waiting, stats.TotalSessions))
}

func (b *BotService) onReferral(user *models.User) {
	link := fmt.Sprintf("https://t.me/%s?start=ref_%d", b.API.Self.UserName, user.TelegramID)
	b.reply(user.TelegramID, b.tf(user.Language, "referral_view", link, user.RefCount))
}

func (b *BotService) onAdminPanel(user *models.User) {
	if user.TelegramID != b.AdminID {
		b.reply(user.TelegramID, b.t(user.Language, "no_rights"))
		return
	}
	stats, err := b.Registry.Stats()
	if err != nil {
		b.Log.Error("stats failed", zap.Error(err))
		return
	}
	b.reply(user.TelegramID, b.tf(user.Language, "admin_panel",
		stats.Users, stats.Banned, stats.ActiveSessions,
		stats.Waiting, stats.PendingReports, stats.Reports))
}

func (b *BotService) onBanCommand(admin *models.User, args string, ban bool) {
	if admin.TelegramID != b.AdminID {
		b.reply(admin.TelegramID, b.t(admin.Language, "no_rights"))
		return
	}
	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		b.reply(admin.TelegramID, "Usage: /ban <user id>")
		return
	}
	if err := b.Storage.SetBanned(target, ban); err != nil {
		b.Log.Error("ban flip failed", zap.Int64("user", target), zap.Error(err))
		return
	}
	b.Log.Info("ban flag changed", zap.Int64("user", target), zap.Bool("banned", ban))
	key := "unbanned"
	if ban {
		key = "banned"
	}
	b.reply(target, b.t(b.langFor(target, nil), key))
	b.reply(admin.TelegramID, "✅ Done.")
}

func (b *BotService) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.API.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.Log.Warn("callback ack failed", zap.Error(err))
	}
	uid := cb.From.ID
	data := cb.Data

	user, err := b.Registry.Resolve(uid)
	if err != nil {
		return
	}
	lang := user.Language

	switch {
	case strings.HasPrefix(data, "rate_"):
		b.onRateCallback(user, data)
	case data == "skip_rating":
		// Replace the keyboard message instead of piling on a new one.
		if cb.Message != nil {
			edit := tgbotapi.NewEditMessageText(uid, cb.Message.MessageID, b.t(lang, "rate_skipped"))
			if _, err := b.API.Send(edit); err != nil {
				b.Log.Warn("edit failed", zap.Int64("user", uid), zap.Error(err))
			}
		} else {
			b.reply(uid, b.t(lang, "rate_skipped"))
		}
	case strings.HasPrefix(data, "report_"):
		b.onReportCallback(ctx, user, data)
	case strings.HasPrefix(data, "adm_"):
		b.onAdminCallback(ctx, user, data)
	case strings.HasPrefix(data, "set_lang_"):
		code := strings.TrimPrefix(data, "set_lang_")
		if err := b.Registry.SetLanguage(uid, code); err != nil {
			b.Log.Error("language change failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		b.replyKB(uid, b.t(code, "language_changed"),
			mainMenuKeyboard(b.Localizer, code, uid == b.AdminID))
	case data == "change_name":
		state := storage.ConvState{State: stateRename}
		if err := b.Storage.SetConvState(ctx, uid, state); err != nil {
			b.Log.Error("conv state set failed", zap.Int64("user", uid), zap.Error(err))
			return
		}
		b.reply(uid, b.t(lang, "new_name_prompt"))
	}
}

// onRateCallback handles rate_<partner>_<session>_<score>.
func (b *BotService) onRateCallback(user *models.User, data string) {
	uid := user.TelegramID
	lang := user.Language
	parts := strings.Split(data, "_")
	if len(parts) != 4 {
		return
	}
	partnerID, err1 := strconv.ParseInt(parts[1], 10, 64)
	sessionID, err2 := strconv.ParseUint(parts[2], 10, 32)
	score, err3 := strconv.Atoi(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}

	err := b.Moderation.Rate(uid, partnerID, uint(sessionID), score)
	switch {
	case errors.Is(err, models.ErrAlreadyRated):
		b.reply(uid, b.t(lang, "rate_already"))
	case errors.Is(err, models.ErrBanned):
		b.reply(uid, b.t(lang, "banned"))
	case err != nil:
		b.Log.Error("rating failed", zap.Int64("user", uid), zap.Error(err))
	default:
		b.replyInline(uid,
			b.tf(lang, "rate_done", strings.Repeat("⭐", score)),
			reportKeyboard(b.Localizer, lang, partnerID, uint(sessionID)))
	}
}

// onReportCallback handles report_<partner>_<session>.
func (b *BotService) onReportCallback(ctx context.Context, user *models.User, data string) {
	uid := user.TelegramID
	lang := user.Language
	parts := strings.Split(data, "_")
	if len(parts) != 3 {
		return
	}
	partnerID, err1 := strconv.ParseInt(parts[1], 10, 64)
	sessionID, err2 := strconv.ParseUint(parts[2], 10, 32)
	if err1 != nil || err2 != nil {
		return
	}

	reportID, err := b.Moderation.Report(ctx, uid, partnerID, uint(sessionID))
	switch {
	case errors.Is(err, models.ErrAlreadyReported):
		b.reply(uid, b.t(lang, "report_already"))
		return
	case errors.Is(err, models.ErrBanned):
		b.reply(uid, b.t(lang, "banned"))
		return
	case err != nil:
		b.Log.Error("report failed", zap.Int64("user", uid), zap.Error(err))
		return
	}
	b.reply(uid, b.t(lang, "report_sent"))

	// The digest itself went to the admin through the moderation
	// service; the action buttons are a transport concern.
	if b.AdminID != 0 {
		b.replyInline(b.AdminID,
			fmt.Sprintf("Report #%d", reportID),
			adminActionKeyboard(reportID, partnerID))
	}
}

// onAdminCallback handles adm_ban_<report>_<user>, adm_skip_<report>
// and adm_close_<report>.
func (b *BotService) onAdminCallback(ctx context.Context, user *models.User, data string) {
	uid := user.TelegramID
	lang := user.Language
	parts := strings.Split(data, "_")
	if len(parts) < 3 {
		return
	}

	var (
		action  moderation.Action
		noteKey string
	)
	switch parts[1] {
	case "ban":
		action, noteKey = moderation.ActionBan, "report_banned_note"
	case "skip":
		action, noteKey = moderation.ActionSkip, "report_skipped_note"
	case "close":
		action, noteKey = moderation.ActionClose, "report_closed_note"
	default:
		return
	}
	reportID, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return
	}

	err = b.Moderation.Adjudicate(ctx, uid, uint(reportID), action)
	switch {
	case errors.Is(err, models.ErrForbidden):
		b.reply(uid, b.t(lang, "no_rights"))
		return
	case err != nil:
		b.Log.Error("adjudication failed", zap.Uint64("report", reportID), zap.Error(err))
		return
	}

	if action == moderation.ActionBan && len(parts) == 4 {
		banned, err := b.Registry.Resolve(mustParseInt64(parts[3]))
		if err == nil {
			b.reply(uid, b.tf(lang, noteKey, banned.Display()))
			return
		}
	}
	b.reply(uid, b.t(lang, noteKey))
}

// ---- small helpers ----

func (b *BotService) t(lang, key string) string {
	return b.Localizer.GetString(lang, key)
}

func (b *BotService) tf(lang, key string, args ...interface{}) string {
	return b.Localizer.GetStringf(lang, key, args...)
}

func (b *BotService) reply(uid int64, text string) {
	if _, err := b.API.Send(tgbotapi.NewMessage(uid, text)); err != nil {
		b.Log.Warn("send failed", zap.Int64("user", uid), zap.Error(err))
	}
}

func (b *BotService) replyKB(uid int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(uid, text)
	msg.ReplyMarkup = kb
	if _, err := b.API.Send(msg); err != nil {
		b.Log.Warn("send failed", zap.Int64("user", uid), zap.Error(err))
	}
}

func (b *BotService) replyInline(uid int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(uid, text)
	msg.ReplyMarkup = kb
	if _, err := b.API.Send(msg); err != nil {
		b.Log.Warn("send failed", zap.Int64("user", uid), zap.Error(err))
	}
}

// detectLang picks the registration language from the Telegram client
// locale, falling back to English for locales without a bundle.
func (b *BotService) detectLang(m *tgbotapi.Message) string {
	if m != nil && m.From != nil {
		for _, lang := range b.Localizer.Languages() {
			if m.From.LanguageCode == lang {
				return lang
			}
		}
	}
	return "en"
}

// langFor resolves the stored language for uid, consulting the message
// locale when the user is unknown.
func (b *BotService) langFor(uid int64, m *tgbotapi.Message) string {
	if user, err := b.Registry.Resolve(uid); err == nil {
		return user.Language
	}
	return b.detectLang(m)
}

func mustParseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
